// Command notesctl обслуживает базу заметок: миграции, демо-данные и проверки.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"customer-notes/internal/config"
	"customer-notes/internal/logger"
	"customer-notes/internal/repository/sqldb"
	svc "customer-notes/internal/service"
	notesService "customer-notes/internal/service/notes"
	"customer-notes/internal/service/qrcode"
)

const version = "notesctl v0.1.0"

// app состояние, общее для всех команд
type app struct {
	configFile string

	cfg     *config.Config
	log     zerolog.Logger
	exec    *sqldb.Executor
	repo    *sqldb.Repository
	service svc.NoteService
}

func main() {
	root, a := newRootCmd()
	if err := execute(root, a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute запускает команду и закрывает базу на любом пути выхода
func execute(root *cobra.Command, a *app) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "notesctl",
		Short: "notesctl manages the customer notes database",
		Long: `notesctl runs schema migrations, loads demo data and inspects the
customer notes database configured in config.yml.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version работает без базы
			if cmd.Name() == "version" {
				return nil
			}
			return a.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: $NOTES_CONFIG or config.yml)")

	root.AddCommand(
		newVersionCmd(),
		newMigrateCmd(a),
		newSeedCmd(a),
		newCheckDBCmd(a),
		newInspectCmd(a),
		newListCmd(a),
		newStatsCmd(a),
		newQRCmd(a),
	)
	return root, a
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// open загружает конфигурацию и подключается к базе
func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(config.ResolveFile(a.configFile))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverSQLite {
		return fmt.Errorf("notesctl requires the %q driver, got %q", config.DriverSQLite, cfg.Database.Driver)
	}

	log, err := logger.New(cfg.Logger, os.Stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	exec, err := sqldb.Open(ctx, cfg.Database, logger.Component(log, "sqldb"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	repo, err := sqldb.NewRepository(exec, cfg.Database.Table)
	if err != nil {
		exec.Close()
		return err
	}

	a.cfg = cfg
	a.log = log
	a.exec = exec
	a.repo = repo
	a.service = notesService.NewNoteService(
		repo,
		qrcode.NewEncoder(cfg.Lookup.QRSize),
		notesService.WithLogger(logger.Component(log, "service")),
		notesService.WithLookupBaseURL(cfg.Lookup.BaseURL),
	)
	return nil
}

// migrateIfEnabled применяет миграции, если включен auto_migrate
func (a *app) migrateIfEnabled(ctx context.Context) error {
	if !a.cfg.Database.AutoMigrate {
		return nil
	}
	_, err := sqldb.Migrate(ctx, a.exec, a.cfg.Database.Table)
	return err
}

func (a *app) close() error {
	if a.exec == nil {
		return nil
	}
	err := a.exec.Close()
	a.exec = nil
	return err
}
