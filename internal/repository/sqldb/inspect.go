package sqldb

import (
	"context"

	"customer-notes/internal/model"
)

// Column описание колонки таблицы
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	Default    string
	PrimaryKey bool
}

// Coverage заполненность необязательных полей у активных заметок
type Coverage struct {
	Active       int64
	WithPhone    int64
	WithCustomer int64
}

// PhonePercent доля активных заметок с телефоном, в процентах
func (c Coverage) PhonePercent() float64 {
	if c.Active == 0 {
		return 0
	}
	return float64(c.WithPhone) * 100 / float64(c.Active)
}

// Describe возвращает колонки таблицы заметок
func (r *Repository) Describe(ctx context.Context) ([]Column, error) {
	rows, err := r.exec.Query(ctx, r.stmts.describe, r.stmts.table)
	if err != nil {
		return nil, err
	}

	cols := make([]Column, 0, len(rows))
	for _, row := range rows {
		cols = append(cols, Column{
			Name:       row.Text("name"),
			Type:       row.Text("type"),
			NotNull:    row.Int64("not_null") != 0,
			Default:    row.Text("dflt_value"),
			PrimaryKey: row.Int64("pk") != 0,
		})
	}
	return cols, nil
}

// Recent возвращает последние созданные заметки в любом состоянии
func (r *Repository) Recent(ctx context.Context, n int) ([]model.Note, error) {
	rows, err := r.exec.Query(ctx, r.stmts.recent, n)
	if err != nil {
		return nil, err
	}
	return scanNotes(rows)
}

// Coverage считает активные заметки с телефоном и с клиентом
func (r *Repository) Coverage(ctx context.Context) (Coverage, error) {
	rows, err := r.exec.Query(ctx, r.stmts.coverage)
	if err != nil {
		return Coverage{}, err
	}
	if len(rows) == 0 {
		return Coverage{}, nil
	}
	return Coverage{
		Active:       rows[0].Int64("total"),
		WithPhone:    rows[0].Int64("with_phone"),
		WithCustomer: rows[0].Int64("with_customer"),
	}, nil
}
