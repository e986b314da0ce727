package swagger

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed openapi.json
var document []byte // документ OpenAPI

// ServeSwagger регистрирует GET /swagger.json на роутере
func ServeSwagger(r chi.Router) {
	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(document)
	})
}
