package sqldb

import (
	"context"
	"fmt"
	"time"

	"customer-notes/internal/errs"
	"customer-notes/internal/model"
	"customer-notes/internal/repository"
)

var _ repository.NoteRepository = (*Repository)(nil)

// Repository хранит заметки в SQL таблице
type Repository struct {
	exec  *Executor
	stmts statements
	now   func() time.Time
}

// Option настройка репозитория
type Option func(*Repository)

// WithClock задает источник времени для временных меток
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// NewRepository создает репозиторий поверх пула; имя таблицы проверяется здесь
func NewRepository(exec *Executor, table string, opts ...Option) (*Repository, error) {
	stmts, err := newStatements(table)
	if err != nil {
		return nil, err
	}

	r := &Repository{
		exec:  exec,
		stmts: stmts,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Repository) timestamp() (time.Time, string) {
	now := r.now().UTC().Truncate(time.Microsecond)
	return now, now.Format(TimeLayout)
}

// Create сохраняет заметку и возвращает ее с присвоенным ID
func (r *Repository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	now, ts := r.timestamp()

	res, err := r.exec.Exec(ctx, r.stmts.insert,
		note.Title, note.Content, note.Customer, note.ClientPhone, note.NoteType, string(note.Status), ts, ts,
	)
	if err != nil {
		return model.Note{}, err
	}

	note.ID = res.LastInsertID
	note.CreatedAt = now
	note.UpdatedAt = now
	return note, nil
}

// GetByID возвращает активную заметку по ее ID
func (r *Repository) GetByID(ctx context.Context, id int64) (model.Note, error) {
	rows, err := r.exec.Query(ctx, r.stmts.selectByID, id)
	if err != nil {
		return model.Note{}, err
	}
	if len(rows) == 0 {
		return model.Note{}, errs.New(errs.NotFound, "note not found")
	}
	return scanNote(rows[0])
}

// List возвращает активные заметки, новые первыми
func (r *Repository) List(ctx context.Context, filter model.Filter) ([]model.Note, error) {
	query, args := r.stmts.list(filter)
	rows, err := r.exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanNotes(rows)
}

// Update перезаписывает изменяемые поля активной заметки
func (r *Repository) Update(ctx context.Context, id int64, input model.NoteInput) error {
	_, ts := r.timestamp()
	res, err := r.exec.Exec(ctx, r.stmts.update,
		input.Title, input.Content, input.Customer, input.ClientPhone, input.NoteType, string(input.Status), ts, id,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// SetStatus переводит активную заметку в указанное состояние
func (r *Repository) SetStatus(ctx context.Context, id int64, status model.Status) error {
	_, ts := r.timestamp()
	res, err := r.exec.Exec(ctx, r.stmts.setStatus, string(status), ts, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Stats считает заметки по состояниям
func (r *Repository) Stats(ctx context.Context, dayStart, dayEnd time.Time) ([]model.StatusStats, error) {
	rows, err := r.exec.Query(ctx, r.stmts.stats,
		dayStart.UTC().Format(TimeLayout), dayEnd.UTC().Format(TimeLayout),
	)
	if err != nil {
		return nil, err
	}

	stats := make([]model.StatusStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, model.StatusStats{
			Status: model.Status(row.Text("estado")),
			Total:  row.Int64("total"),
			Today:  row.Int64("hoy"),
		})
	}
	return stats, nil
}

// Ping проверяет доступность базы
func (r *Repository) Ping(ctx context.Context) error {
	return r.exec.Ping(ctx)
}

func affectedOrNotFound(res Result) error {
	if res.RowsAffected == 0 {
		return errs.New(errs.NotFound, "note not found")
	}
	return nil
}

func scanNotes(rows []Row) ([]model.Note, error) {
	notes := make([]model.Note, 0, len(rows))
	for _, row := range rows {
		note, err := scanNote(row)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func scanNote(row Row) (model.Note, error) {
	created, err := parseTime(row.Text("fecha_creacion"))
	if err != nil {
		return model.Note{}, err
	}
	updated, err := parseTime(row.Text("fecha_modificacion"))
	if err != nil {
		return model.Note{}, err
	}

	return model.Note{
		ID:          row.Int64("id"),
		Title:       row.Text("titulo"),
		Content:     row.Text("contenido"),
		Customer:    row.Text("cliente"),
		ClientPhone: row.Text("clientPhone"),
		NoteType:    row.Text("noteType"),
		Status:      model.Status(row.Text("estado")),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, errs.Wrap(errs.Store, storeMessage, fmt.Errorf("parse timestamp %q: %w", s, err))
	}
	return t, nil
}
