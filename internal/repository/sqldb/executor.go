package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"customer-notes/internal/config"
	"customer-notes/internal/errs"
)

const driverName = "sqlite"

// Прагмы по умолчанию: конкурентные писатели ждут блокировку, а не падают с SQLITE_BUSY
const defaultPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// storeMessage сообщение для клиента при любой ошибке базы данных
const storeMessage = "database error"

// Row строка результата: имя колонки -> значение
type Row map[string]any

// Result результат изменяющего запроса
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Executor выполняет параметризованные запросы через пул соединений.
// Каждый вызов берет соединение из пула на время запроса и возвращает его на любом пути выхода.
type Executor struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open открывает пул соединений и проверяет его
func Open(ctx context.Context, cfg *config.ConfigDatabase, log zerolog.Logger) (*Executor, error) {
	db, err := sql.Open(driverName, WithPragmas(cfg.DSN))
	if err != nil {
		return nil, errs.Wrap(errs.Store, storeMessage, fmt.Errorf("sql.Open: %w", err))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	e := NewExecutor(db, log)
	if err := e.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().
		Str("dsn", RedactDSN(cfg.DSN)).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("database pool opened")

	return e, nil
}

// NewExecutor оборачивает уже открытый пул
func NewExecutor(db *sql.DB, log zerolog.Logger) *Executor {
	return &Executor{db: db, log: log}
}

// Query выполняет запрос и возвращает все строки в порядке выдачи
func (e *Executor) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	rows, err := e.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, e.fail(stmt, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, e.fail(stmt, err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, e.fail(stmt, err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.fail(stmt, err)
	}

	return out, nil
}

// Exec выполняет изменяющий запрос
func (e *Executor) Exec(ctx context.Context, stmt string, args ...any) (Result, error) {
	res, err := e.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Result{}, e.fail(stmt, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, e.fail(stmt, err)
	}
	// LastInsertId есть не у каждого запроса
	lastID, _ := res.LastInsertId()

	return Result{RowsAffected: affected, LastInsertID: lastID}, nil
}

// Ping проверяет соединение с базой
func (e *Executor) Ping(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return errs.Wrap(errs.Store, storeMessage, fmt.Errorf("ping: %w", err))
	}
	return nil
}

// Version возвращает версию движка базы данных
func (e *Executor) Version(ctx context.Context) (string, error) {
	rows, err := e.Query(ctx, "SELECT sqlite_version() AS version")
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", errs.New(errs.Store, storeMessage)
	}
	return rows[0].Text("version"), nil
}

// Stats статистика пула соединений
func (e *Executor) Stats() sql.DBStats {
	return e.db.Stats()
}

// Close закрывает пул
func (e *Executor) Close() error {
	return e.db.Close()
}

func (e *Executor) fail(stmt string, err error) error {
	e.log.Debug().Err(err).Str("stmt", stmt).Msg("statement failed")
	return errs.Wrap(errs.Store, storeMessage, err)
}

// WithPragmas добавляет к DSN прагмы по умолчанию, если в нем нет своих
func WithPragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + defaultPragmas
}

// RedactDSN убирает из DSN параметры запроса
func RedactDSN(dsn string) string {
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		return dsn[:i]
	}
	return dsn
}

// Int64 читает целочисленную колонку
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Text читает текстовую колонку; NULL дает пустую строку
func (r Row) Text(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
