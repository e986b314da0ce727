package model

import (
	"strings"
	"time"

	"customer-notes/internal/errs"
)

// DefaultNoteType тип заметки по умолчанию
const DefaultNoteType = "consulta"

// Status состояние заметки
type Status string

const (
	StatusActive   Status = "activa"
	StatusArchived Status = "archivada"
	StatusDeleted  Status = "eliminada"
)

// Statuses все допустимые состояния
var Statuses = []Status{StatusActive, StatusArchived, StatusDeleted}

// ParseStatus разбирает строковое представление состояния
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusArchived, StatusDeleted:
		return Status(s), nil
	default:
		return "", errs.New(errs.Validation, "unknown status: "+s)
	}
}

func (s Status) String() string {
	return string(s)
}

// Valid проверяет, что состояние входит в закрытый набор
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// CanTransitionTo сообщает, разрешен ли переход s -> next.
// Из archivada и eliminada выхода нет.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		switch next {
		case StatusActive, StatusArchived, StatusDeleted:
			return true
		default:
			return false
		}
	case StatusArchived, StatusDeleted:
		return false
	default:
		return false
	}
}

// Note представляет заметку клиента (доменная модель)
type Note struct {
	ID          int64     `json:"id"`                 // Идентификатор (folio)
	Title       string    `json:"titulo"`             // Заголовок
	Content     string    `json:"contenido"`          // Содержание
	Customer    string    `json:"cliente"`            // Клиент
	ClientPhone string    `json:"clientPhone"`        // Телефон клиента
	NoteType    string    `json:"noteType"`           // Тип заметки
	Status      Status    `json:"estado"`             // Состояние
	CreatedAt   time.Time `json:"fecha_creacion"`     // Дата создания
	UpdatedAt   time.Time `json:"fecha_modificacion"` // Дата последнего изменения
}

// NoteInput записываемые поля заметки
type NoteInput struct {
	Title       string `json:"titulo"`
	Content     string `json:"contenido"`
	Customer    string `json:"cliente"`
	ClientPhone string `json:"clientPhone"`
	NoteType    string `json:"noteType"`
	Status      Status `json:"estado"`
}

// Normalize обрезает пробелы и подставляет значения по умолчанию
func (in NoteInput) Normalize() NoteInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Customer = strings.TrimSpace(in.Customer)
	in.ClientPhone = strings.TrimSpace(in.ClientPhone)
	in.NoteType = strings.TrimSpace(in.NoteType)
	in.Status = Status(strings.TrimSpace(string(in.Status)))

	if in.NoteType == "" {
		in.NoteType = DefaultNoteType
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	return in
}

// Validate проверяет обязательные поля. Вызывается после Normalize.
func (in NoteInput) Validate() error {
	if in.Title == "" || in.Content == "" {
		return errs.New(errs.Validation, "title and content are required")
	}
	if !in.Status.Valid() {
		return errs.New(errs.Validation, "unknown status: "+string(in.Status))
	}
	return nil
}

// Note собирает заметку из входных данных (без ID и временных меток)
func (in NoteInput) Note() Note {
	return Note{
		Title:       in.Title,
		Content:     in.Content,
		Customer:    in.Customer,
		ClientPhone: in.ClientPhone,
		NoteType:    in.NoteType,
		Status:      in.Status,
	}
}

// Filter параметры выборки списка
type Filter struct {
	Customer string // подстрока в поле cliente
	Title    string // подстрока в поле titulo
	Limit    int    // 0 - без ограничения
}

// Validate проверяет параметры фильтра
func (f Filter) Validate() error {
	if f.Limit < 0 {
		return errs.New(errs.Validation, "limit must be a non-negative integer")
	}
	return nil
}

// StatusStats количество заметок в одном состоянии
type StatusStats struct {
	Status Status `json:"estado"`
	Total  int64  `json:"total"`
	Today  int64  `json:"hoy"`
}

// LookupCode код быстрого доступа к заметке
type LookupCode struct {
	URL     string // адрес страницы заметки
	PNG     []byte // изображение QR
	DataURL string // data:image/png;base64,...
}
