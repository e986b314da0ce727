package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"customer-notes/internal/model"
)

func newListCmd(a *app) *cobra.Command {
	var filter model.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active notes",
		Long: `List prints active notes, newest first.

Example:
  notesctl list
  notesctl list --cliente abc --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.migrateIfEnabled(ctx); err != nil {
				return err
			}

			notes, err := a.service.List(ctx, filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITULO\tCLIENTE\tTIPO\tCREADA")
			for _, n := range notes {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					n.ID, n.Title, n.Customer, n.NoteType, n.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\n", len(notes))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Customer, "cliente", "", "customer substring")
	cmd.Flags().StringVar(&filter.Title, "titulo", "", "title substring")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "max notes (0 = all)")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show note counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.migrateIfEnabled(ctx); err != nil {
				return err
			}

			stats, err := a.service.Stats(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ESTADO\tTOTAL\tHOY")
			for _, s := range stats {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Status, s.Total, s.Today)
			}
			return tw.Flush()
		},
	}
}

func newQRCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "qr <folio>",
		Short: "Generate the lookup QR code for a folio",
		Long: `QR prints the lookup URL for a folio. With --output the QR image
is written as PNG.

Example:
  notesctl qr 12
  notesctl qr 12 --output folio-12.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folio, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid folio %q", args[0])
			}

			code, err := a.service.GenerateLookupCode(cmd.Context(), folio)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), code.URL)
			if output == "" {
				return nil
			}
			if err := os.WriteFile(output, code.PNG, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "QR written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write PNG to file")
	return cmd
}
