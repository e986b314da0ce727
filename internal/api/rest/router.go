package rest

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"customer-notes/internal/api/rest/middleware"
	"customer-notes/internal/api/swagger"
	"customer-notes/internal/config"
)

// Страницы сайта: путь -> файл в static_dir
var pages = map[string]string{
	"/":         "index.html",
	"/notas":    "notas.html",
	"/contacto": "contacto.html",
	"/acerca":   "acerca.html",
}

// NewRouter собирает маршруты API и middleware.
// Порядок выполнения: CORS -> rate limit -> request id -> logging -> recoverer -> маршрут.
func NewRouter(h *Handler, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.HTTP))
	r.Use(middleware.RateLimit(log, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.ListNotes)
			r.Post("/", h.CreateNote)
			r.Get("/stats", h.Stats)
			r.Get("/qr/{folio}", h.LookupCode)
			r.Get("/{id}", h.GetNote)
			r.Put("/{id}", h.UpdateNote)
			r.Delete("/{id}", h.DeleteNote)
			r.Patch("/{id}/archive", h.ArchiveNote)
		})
	})

	if cfg.Swagger != nil && cfg.Swagger.Enabled {
		swagger.ServeSwagger(r)
	}

	if cfg.Server != nil && cfg.Server.StaticDir != "" {
		serveStatic(r, cfg.Server.StaticDir, log)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Message: "method not allowed"})
	})

	return r
}

// serveStatic раздает файлы сайта и короткие адреса страниц
func serveStatic(r chi.Router, dir string, log zerolog.Logger) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn().Str("dir", dir).Msg("static dir not found, site disabled")
		return
	}

	for route, file := range pages {
		path := filepath.Join(dir, file)
		r.Get(route, func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, path)
		})
	}

	files := http.FileServer(http.Dir(dir))
	r.Get("/*", files.ServeHTTP)
	r.Head("/*", files.ServeHTTP)
}
