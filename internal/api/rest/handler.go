package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"customer-notes/internal/api/rest/middleware"
	"customer-notes/internal/errs"
	"customer-notes/internal/model"
	svc "customer-notes/internal/service"
)

const maxBodyBytes = 1 << 20

// Handler HTTP обработчики API заметок
type Handler struct {
	noteService svc.NoteService
	log         zerolog.Logger
	now         func() time.Time
}

// NewHandler создает новый экземпляр HTTP хэндлера
func NewHandler(noteService svc.NoteService, log zerolog.Logger) *Handler {
	return &Handler{
		noteService: noteService,
		log:         log,
		now:         time.Now,
	}
}

// savedNote ответ на изменение: id и записанные поля
type savedNote struct {
	ID int64 `json:"id"`
	model.NoteInput
}

// ListNotes GET /api/notes?cliente=&titulo=&limit=
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.Filter{
		Customer: strings.TrimSpace(q.Get("cliente")),
		Title:    strings.TrimSpace(q.Get("titulo")),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.fail(w, r, errs.New(errs.Validation, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	notes, err := h.noteService.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	total := len(notes)
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "notes retrieved",
		Data:    notes,
		Total:   &total,
	})
}

// GetNote GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	note, err := h.noteService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "note retrieved", note)
}

// CreateNote POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInput(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	note, err := h.noteService.Create(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "note created", note)
}

// UpdateNote PUT /api/notes/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	input, err := decodeInput(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.noteService.Update(r.Context(), id, input); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "note updated", savedNote{ID: id, NoteInput: input.Normalize()})
}

// DeleteNote DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.noteService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "note deleted", nil)
}

// ArchiveNote PATCH /api/notes/{id}/archive
func (h *Handler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.noteService.Archive(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "note archived", nil)
}

// Stats GET /api/notes/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.noteService.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "statistics retrieved", stats)
}

// LookupCode GET /api/notes/qr/{folio}[?format=png]
func (h *Handler) LookupCode(w http.ResponseWriter, r *http.Request) {
	folio, err := pathID(r, "folio")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	code, err := h.noteService.GenerateLookupCode(r.Context(), folio)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "png" {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(code.PNG)))
		w.WriteHeader(http.StatusOK)
		w.Write(code.PNG)
		return
	}
	writeOK(w, http.StatusOK, "QR generated", code.DataURL)
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Health GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ts := h.now().UTC().Format(time.RFC3339Nano)
	if err := h.noteService.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "ERROR",
			Message:   "database unavailable",
			Timestamp: ts,
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Message:   "customer notes service is running",
		Timestamp: ts,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := h.log.With().
		Str("request_id", middleware.RequestIDFrom(r.Context())).
		Str("path", r.URL.Path).
		Logger()
	handleError(w, log, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.New(errs.Validation, name+" must be a positive integer")
	}
	return id, nil
}

func decodeInput(w http.ResponseWriter, r *http.Request) (model.NoteInput, error) {
	var input model.NoteInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return model.NoteInput{}, errs.New(errs.Validation, "request body too large")
		case errors.Is(err, io.EOF):
			return model.NoteInput{}, errs.New(errs.Validation, "request body is empty")
		default:
			return model.NoteInput{}, errs.Wrap(errs.Validation, "malformed JSON body", err)
		}
	}
	return input, nil
}
