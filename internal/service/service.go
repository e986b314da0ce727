package service

import (
	"context"

	"customer-notes/internal/model"
)

// NoteService интерфейс для бизнес-логики работы с заметками клиентов
type NoteService interface {
	// Create проверяет ввод и создает активную заметку
	Create(ctx context.Context, input model.NoteInput) (model.Note, error)

	// Get возвращает активную заметку по ее ID
	Get(ctx context.Context, id int64) (model.Note, error)

	// List возвращает активные заметки по фильтру, новые первыми
	List(ctx context.Context, filter model.Filter) ([]model.Note, error)

	// Update перезаписывает поля активной заметки
	Update(ctx context.Context, id int64, input model.NoteInput) error

	// Delete помечает активную заметку удаленной
	Delete(ctx context.Context, id int64) error

	// Archive помечает активную заметку архивной
	Archive(ctx context.Context, id int64) error

	// Stats возвращает количество заметок по состояниям, в том числе созданных сегодня
	Stats(ctx context.Context) ([]model.StatusStats, error)

	// GenerateLookupCode строит ссылку на заметку и ее QR код
	GenerateLookupCode(ctx context.Context, folio int64) (model.LookupCode, error)

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}
