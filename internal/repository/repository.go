package repository

import (
	"context"
	"time"

	"customer-notes/internal/model"
)

// NoteRepository интерфейс для работы с заметками в хранилище.
// Заметки никогда не удаляются физически: удаление и архивирование меняют estado.
// Любое изменение применяется только к активной заметке; иначе возвращается errs.NotFound.
type NoteRepository interface {
	// Create сохраняет заметку и возвращает ее с присвоенным ID и временными метками
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// GetByID возвращает активную заметку по ее ID
	GetByID(ctx context.Context, id int64) (model.Note, error)

	// List возвращает активные заметки, новые первыми
	List(ctx context.Context, filter model.Filter) ([]model.Note, error)

	// Update перезаписывает изменяемые поля активной заметки
	Update(ctx context.Context, id int64, input model.NoteInput) error

	// SetStatus переводит активную заметку в указанное состояние
	SetStatus(ctx context.Context, id int64, status model.Status) error

	// Stats считает заметки по состояниям; Today - созданные в [dayStart, dayEnd)
	Stats(ctx context.Context, dayStart, dayEnd time.Time) ([]model.StatusStats, error)

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}
