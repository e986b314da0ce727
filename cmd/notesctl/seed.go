package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"

	"customer-notes/internal/model"
)

var noteTypes = []string{model.DefaultNoteType, "seguimiento", "reclamo", "cita"}

func newSeedCmd(a *app) *cobra.Command {
	var count int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated notes",
		Long: `Seed inserts randomly generated notes for local development.
The same --seed produces the same notes.

Example:
  notesctl seed --count 50
  notesctl seed --count 10 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			ctx := cmd.Context()
			if err := a.migrateIfEnabled(ctx); err != nil {
				return err
			}

			fake := faker.NewWithSeed(rand.NewSource(seed))
			for i := 0; i < count; i++ {
				in := model.NoteInput{
					Title:    fake.Lorem().Sentence(4),
					Content:  fake.Lorem().Paragraph(2),
					Customer: fake.Company().Name(),
					NoteType: noteTypes[fake.IntBetween(0, len(noteTypes)-1)],
				}
				if fake.Bool() {
					in.ClientPhone = fake.Phone().Number()
				}
				if _, err := a.service.Create(ctx, in); err != nil {
					return fmt.Errorf("create note %d: %w", i+1, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d note(s) (seed %d)\n", count, seed)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 20, "number of notes to insert")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")
	return cmd
}
