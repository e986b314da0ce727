package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"customer-notes/internal/repository/sqldb"
)

func newCheckDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Check the database connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.exec.Ping(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			v, err := a.exec.Version(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:  %s\n", sqldb.RedactDSN(a.cfg.Database.DSN))
			fmt.Fprintf(out, "SQLite:    %s\n", v)
			fmt.Fprintf(out, "Table:     %s\n", a.cfg.Database.Table)
			fmt.Fprintf(out, "Open conn: %d\n", a.exec.Stats().OpenConnections)
			fmt.Fprintln(out, "Connection OK")
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show table structure, recent notes and field coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if recent <= 0 {
				return fmt.Errorf("--recent must be positive, got %d", recent)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cols, err := a.repo.Describe(ctx)
			if err != nil {
				return err
			}
			if len(cols) == 0 {
				return fmt.Errorf("table %q does not exist, run notesctl migrate", a.cfg.Database.Table)
			}

			fmt.Fprintf(out, "Table %s:\n", a.cfg.Database.Table)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "  COLUMN\tTYPE\tNOT NULL\tDEFAULT\tPK")
			for _, c := range cols {
				fmt.Fprintf(tw, "  %s\t%s\t%t\t%s\t%t\n", c.Name, c.Type, c.NotNull, c.Default, c.PrimaryKey)
			}
			tw.Flush()

			notes, err := a.repo.Recent(ctx, recent)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLast %d note(s):\n", len(notes))
			for _, n := range notes {
				fmt.Fprintf(out, "  #%d [%s] %s (%s)\n", n.ID, n.Status, n.Title, n.Customer)
			}

			cov, err := a.repo.Coverage(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nActive notes: %d, with customer: %d, with phone: %d (%.1f%%)\n",
				cov.Active, cov.WithCustomer, cov.WithPhone, cov.PhonePercent())
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent notes to show")
	return cmd
}
