package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"customer-notes/internal/model"
)

const migrationsTable = "schema_migrations"

// migration одна версия схемы
type migration struct {
	version    int
	name       string
	statements []string
}

// migrations версии схемы для таблицы заметок.
// Версия 2 соответствует добавлению телефона клиента в уже существующую таблицу.
func migrations(table string) []migration {
	t := `"` + table + `"`
	return []migration{
		{
			version: 1,
			name:    "create notes table",
			statements: []string{
				"CREATE TABLE IF NOT EXISTS " + t + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	titulo TEXT NOT NULL,
	contenido TEXT NOT NULL,
	cliente TEXT NOT NULL DEFAULT '',
	estado TEXT NOT NULL DEFAULT '` + string(model.StatusActive) + `'
		CHECK (estado IN (` + statusList() + `)),
	fecha_creacion TEXT NOT NULL,
	fecha_modificacion TEXT NOT NULL
)`,
				fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_cliente" ON %s (cliente)`, table, t),
				fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_estado" ON %s (estado)`, table, t),
				fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_fecha_creacion" ON %s (fecha_creacion)`, table, t),
			},
		},
		{
			version: 2,
			name:    "add client phone",
			statements: []string{
				"ALTER TABLE " + t + " ADD COLUMN clientPhone TEXT NOT NULL DEFAULT ''",
			},
		},
		{
			version: 3,
			name:    "add note type",
			statements: []string{
				"ALTER TABLE " + t + " ADD COLUMN noteType TEXT NOT NULL DEFAULT '" + model.DefaultNoteType + "'",
			},
		},
	}
}

// statusList перечисляет допустимые состояния для CHECK
func statusList() string {
	quoted := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		quoted = append(quoted, "'"+string(s)+"'")
	}
	return strings.Join(quoted, ", ")
}

// MigrationStatus состояние одной миграции
type MigrationStatus struct {
	Version int
	Name    string
	Applied bool
}

// Migrate применяет недостающие миграции и возвращает число примененных
func Migrate(ctx context.Context, e *Executor, table string) (int, error) {
	if err := ValidateIdentifier(table); err != nil {
		return 0, err
	}
	if err := ensureMigrationsTable(ctx, e); err != nil {
		return 0, err
	}

	applied, err := appliedVersions(ctx, e)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range migrations(table) {
		if applied[m.version] {
			continue
		}
		for _, stmt := range m.statements {
			if _, err := e.Exec(ctx, stmt); err != nil {
				return count, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		_, err := e.Exec(ctx,
			"INSERT INTO "+migrationsTable+" (version, name, applied_at) VALUES (?, ?, ?)",
			m.version, m.name, time.Now().UTC().Format(TimeLayout),
		)
		if err != nil {
			return count, fmt.Errorf("record migration %d: %w", m.version, err)
		}

		e.log.Info().Int("version", m.version).Str("name", m.name).Msg("migration applied")
		count++
	}

	return count, nil
}

// Migrations возвращает список миграций с отметкой о применении
func Migrations(ctx context.Context, e *Executor, table string) ([]MigrationStatus, error) {
	if err := ensureMigrationsTable(ctx, e); err != nil {
		return nil, err
	}
	applied, err := appliedVersions(ctx, e)
	if err != nil {
		return nil, err
	}

	var out []MigrationStatus
	for _, m := range migrations(table) {
		out = append(out, MigrationStatus{Version: m.version, Name: m.name, Applied: applied[m.version]})
	}
	return out, nil
}

func ensureMigrationsTable(ctx context.Context, e *Executor) error {
	_, err := e.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`)
	return err
}

func appliedVersions(ctx context.Context, e *Executor) (map[int]bool, error) {
	rows, err := e.Query(ctx, "SELECT version FROM "+migrationsTable)
	if err != nil {
		return nil, err
	}
	applied := make(map[int]bool, len(rows))
	for _, row := range rows {
		applied[int(row.Int64("version"))] = true
	}
	return applied, nil
}
