package rest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"customer-notes/internal/errs"
)

// envelope общий формат ответа API
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Total   *int   `json:"total,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// handleError сопоставляет ошибку статусу HTTP; причина в ответ не попадает
func handleError(w http.ResponseWriter, log zerolog.Logger, err error) {
	code := errs.CodeOf(err)
	status := errs.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", string(code)).Msg("request failed")
	}
	writeJSON(w, status, envelope{Success: false, Message: errs.MessageOf(err)})
}
