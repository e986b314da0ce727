package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"customer-notes/internal/errs"
	"customer-notes/internal/model"
	"customer-notes/internal/repository"
)

var _ repository.NoteRepository = (*repo)(nil)

type repo struct {
	mu     sync.RWMutex
	notes  map[int64]model.Note
	lastID int64
	now    func() time.Time
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map
func NewRepository() repository.NoteRepository {
	return NewRepositoryWithClock(time.Now)
}

// NewRepositoryWithClock создает репозиторий с заданным источником времени
func NewRepositoryWithClock(now func() time.Time) repository.NoteRepository {
	return &repo{
		notes: make(map[int64]model.Note),
		now:   now,
	}
}

func (r *repo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func notFound() error {
	return errs.New(errs.NotFound, "note not found")
}

// Create сохраняет заметку; ID растет монотонно и не переиспользуется
func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, errs.Wrap(errs.Store, "database error", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	note.ID = r.lastID

	now := r.timestamp()
	note.CreatedAt = now
	note.UpdatedAt = now

	r.notes[note.ID] = note
	return note, nil
}

// GetByID возвращает активную заметку по ее ID
func (r *repo) GetByID(ctx context.Context, id int64) (model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	if !exists || note.Status != model.StatusActive {
		return model.Note{}, notFound()
	}
	return note, nil
}

// List возвращает активные заметки, новые первыми
func (r *repo) List(ctx context.Context, filter model.Filter) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]model.Note, 0, len(r.notes))
	for _, note := range r.notes {
		if note.Status != model.StatusActive {
			continue
		}
		if filter.Customer != "" && !containsFold(note.Customer, filter.Customer) {
			continue
		}
		if filter.Title != "" && !containsFold(note.Title, filter.Title) {
			continue
		}
		notes = append(notes, note)
	}

	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID > notes[j].ID
	})

	if filter.Limit > 0 && len(notes) > filter.Limit {
		notes = notes[:filter.Limit]
	}
	return notes, nil
}

// Update перезаписывает изменяемые поля активной заметки
func (r *repo) Update(ctx context.Context, id int64, input model.NoteInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, exists := r.notes[id]
	if !exists || note.Status != model.StatusActive {
		return notFound()
	}

	note.Title = input.Title
	note.Content = input.Content
	note.Customer = input.Customer
	note.ClientPhone = input.ClientPhone
	note.NoteType = input.NoteType
	note.Status = input.Status
	note.UpdatedAt = r.timestamp()

	r.notes[id] = note
	return nil
}

// SetStatus переводит активную заметку в указанное состояние
func (r *repo) SetStatus(ctx context.Context, id int64, status model.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, exists := r.notes[id]
	if !exists || note.Status != model.StatusActive {
		return notFound()
	}

	note.Status = status
	note.UpdatedAt = r.timestamp()
	r.notes[id] = note
	return nil
}

// Stats считает заметки по состояниям, упорядочено по estado
func (r *repo) Stats(ctx context.Context, dayStart, dayEnd time.Time) ([]model.StatusStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byStatus := make(map[model.Status]*model.StatusStats)
	for _, note := range r.notes {
		s, ok := byStatus[note.Status]
		if !ok {
			s = &model.StatusStats{Status: note.Status}
			byStatus[note.Status] = s
		}
		s.Total++
		if !note.CreatedAt.Before(dayStart) && note.CreatedAt.Before(dayEnd) {
			s.Today++
		}
	}

	stats := make([]model.StatusStats, 0, len(byStatus))
	for _, s := range byStatus {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Status < stats[j].Status
	})
	return stats, nil
}

// Ping всегда успешен
func (r *repo) Ping(ctx context.Context) error {
	return ctx.Err()
}

// containsFold ищет подстроку без учета регистра только для ASCII, как LIKE в SQLite
func containsFold(s, substr string) bool {
	return strings.Contains(asciiLower(s), asciiLower(substr))
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
