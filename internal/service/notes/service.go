package notes

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"customer-notes/internal/errs"
	"customer-notes/internal/model"
	"customer-notes/internal/repository"
	svc "customer-notes/internal/service"
	"customer-notes/internal/service/qrcode"
)

// DefaultLookupBaseURL адрес страницы заметок по умолчанию
const DefaultLookupBaseURL = "http://localhost:3000/notas"

var _ svc.NoteService = (*service)(nil)

type service struct {
	noteRepository repository.NoteRepository
	encoder        qrcode.Encoder
	lookupBaseURL  string
	log            zerolog.Logger
	now            func() time.Time
}

// Option настройка сервиса
type Option func(*service)

// WithLogger задает логгер сервиса
func WithLogger(log zerolog.Logger) Option {
	return func(s *service) {
		s.log = log
	}
}

// WithLookupBaseURL задает адрес, на который ведет QR код
func WithLookupBaseURL(base string) Option {
	return func(s *service) {
		if base != "" {
			s.lookupBaseURL = base
		}
	}
}

// WithClock задает часы сервиса; от них считается "сегодня" в статистике
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewNoteService создает новый экземпляр сервиса для работы с заметками
func NewNoteService(noteRepository repository.NoteRepository, encoder qrcode.Encoder, opts ...Option) svc.NoteService {
	s := &service{
		noteRepository: noteRepository,
		encoder:        encoder,
		lookupBaseURL:  DefaultLookupBaseURL,
		log:            zerolog.Nop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create проверяет ввод и создает активную заметку
func (s *service) Create(ctx context.Context, input model.NoteInput) (model.Note, error) {
	input = input.Normalize()
	// Новая заметка всегда активна
	input.Status = model.StatusActive
	if err := input.Validate(); err != nil {
		return model.Note{}, err
	}

	note, err := s.noteRepository.Create(ctx, input.Note())
	if err != nil {
		return model.Note{}, s.fail("create", "failed to create note", err)
	}

	s.log.Info().Int64("id", note.ID).Msg("note created")
	return note, nil
}

// Get возвращает активную заметку по ее ID
func (s *service) Get(ctx context.Context, id int64) (model.Note, error) {
	if err := validateID(id); err != nil {
		return model.Note{}, err
	}

	note, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return model.Note{}, s.fail("get", "failed to get note", err)
	}
	return note, nil
}

// List возвращает активные заметки по фильтру
func (s *service) List(ctx context.Context, filter model.Filter) ([]model.Note, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	notes, err := s.noteRepository.List(ctx, filter)
	if err != nil {
		return nil, s.fail("list", "failed to list notes", err)
	}
	return notes, nil
}

// Update перезаписывает поля активной заметки
func (s *service) Update(ctx context.Context, id int64, input model.NoteInput) error {
	if err := validateID(id); err != nil {
		return err
	}
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return err
	}
	// Изменяется только активная заметка
	if !model.StatusActive.CanTransitionTo(input.Status) {
		return errs.New(errs.Validation, "status transition not allowed: "+string(input.Status))
	}

	if err := s.noteRepository.Update(ctx, id, input); err != nil {
		return s.fail("update", "failed to update note", err)
	}

	s.log.Info().Int64("id", id).Str("estado", string(input.Status)).Msg("note updated")
	return nil
}

// Delete помечает активную заметку удаленной
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.transition(ctx, "delete", id, model.StatusDeleted)
}

// Archive помечает активную заметку архивной
func (s *service) Archive(ctx context.Context, id int64) error {
	return s.transition(ctx, "archive", id, model.StatusArchived)
}

func (s *service) transition(ctx context.Context, op string, id int64, next model.Status) error {
	if err := validateID(id); err != nil {
		return err
	}
	if !model.StatusActive.CanTransitionTo(next) {
		return errs.New(errs.Validation, "status transition not allowed: "+string(next))
	}

	if err := s.noteRepository.SetStatus(ctx, id, next); err != nil {
		return s.fail(op, "failed to "+op+" note", err)
	}

	s.log.Info().Int64("id", id).Str("estado", string(next)).Msg("note status changed")
	return nil
}

// Stats возвращает количество заметок по состояниям.
// "Сегодня" - календарный день по часам сервера.
func (s *service) Stats(ctx context.Context) ([]model.StatusStats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats, err := s.noteRepository.Stats(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, s.fail("stats", "failed to get statistics", err)
	}
	return stats, nil
}

// GenerateLookupCode строит ссылку вида <base>?folio=<n> и кодирует ее в QR
func (s *service) GenerateLookupCode(ctx context.Context, folio int64) (model.LookupCode, error) {
	if folio <= 0 {
		return model.LookupCode{}, errs.New(errs.Validation, "folio must be a positive integer")
	}

	link, err := s.lookupURL(folio)
	if err != nil {
		return model.LookupCode{}, s.fail("lookup_code", "failed to generate lookup code", errs.Wrap(errs.Internal, "", err))
	}

	png, err := s.encoder.Encode(link)
	if err != nil {
		return model.LookupCode{}, s.fail("lookup_code", "failed to generate QR code", errs.Wrap(errs.Encoding, "", err))
	}

	return model.LookupCode{
		URL:     link,
		PNG:     png,
		DataURL: qrcode.DataURL(png),
	}, nil
}

// Ping проверяет доступность хранилища
func (s *service) Ping(ctx context.Context) error {
	if err := s.noteRepository.Ping(ctx); err != nil {
		return s.fail("ping", "database unavailable", err)
	}
	return nil
}

func (s *service) lookupURL(folio int64) (string, error) {
	u, err := url.Parse(s.lookupBaseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("folio", strconv.FormatInt(folio, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fail пропускает ожидаемые исходы как есть, а сбои логирует
// и возвращает с общим сообщением операции
func (s *service) fail(op, message string, err error) error {
	code := errs.CodeOf(err)
	switch code {
	case errs.Validation, errs.NotFound:
		return err
	}

	s.log.Error().Err(err).Str("op", op).Str("code", string(code)).Msg("operation failed")
	return errs.Wrap(code, message, err)
}

func validateID(id int64) error {
	if id <= 0 {
		return errs.New(errs.Validation, "id must be a positive integer")
	}
	return nil
}
