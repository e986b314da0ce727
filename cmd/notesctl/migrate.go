package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"customer-notes/internal/model"
	"customer-notes/internal/repository/sqldb"
)

// Демонстрационные заметки для пустой базы
var demoNotes = []model.NoteInput{
	{Title: "Nota de Prueba 1", Content: "Esta es una nota de prueba para verificar el sistema", Customer: "Cliente Demo"},
	{Title: "Reunión Importante", Content: "Seguimiento de proyecto crítico con el cliente", Customer: "Empresa ABC"},
	{Title: "Recordatorio", Content: "Llamar al cliente para confirmar cita", Customer: "Cliente VIP"},
}

func newMigrateCmd(a *app) *cobra.Command {
	var demo, status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Long: `Migrate creates the notes table and applies pending schema changes.
Migrations are recorded in schema_migrations and are safe to run again.

Example:
  notesctl migrate
  notesctl migrate --demo
  notesctl migrate --status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if status {
				list, err := sqldb.Migrations(ctx, a.exec, a.cfg.Database.Table)
				if err != nil {
					return err
				}
				for _, m := range list {
					mark := "pending"
					if m.Applied {
						mark = "applied"
					}
					fmt.Fprintf(out, "%3d  %-8s %s\n", m.Version, mark, m.Name)
				}
				return nil
			}

			applied, err := sqldb.Migrate(ctx, a.exec, a.cfg.Database.Table)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(out, "Applied %d migration(s)\n", applied)

			if !demo {
				return nil
			}

			existing, err := a.service.List(ctx, model.Filter{Limit: 1})
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				fmt.Fprintln(out, "Database already has notes, demo data skipped")
				return nil
			}
			for _, in := range demoNotes {
				note, err := a.service.Create(ctx, in)
				if err != nil {
					return fmt.Errorf("create demo note: %w", err)
				}
				fmt.Fprintf(out, "Created note %d: %s\n", note.ID, note.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "insert demo notes into an empty database")
	cmd.Flags().BoolVar(&status, "status", false, "show migrations without applying them")
	return cmd
}
