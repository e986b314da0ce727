package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-notes/internal/config"
	"customer-notes/internal/errs"
	"customer-notes/internal/model"
	"customer-notes/internal/repository/memory"
	"customer-notes/internal/service/notes"
	"customer-notes/internal/service/qrcode"
)

// mockNoteService - мок сервиса для тестирования handler
type mockNoteService struct {
	createFunc  func(ctx context.Context, input model.NoteInput) (model.Note, error)
	getFunc     func(ctx context.Context, id int64) (model.Note, error)
	listFunc    func(ctx context.Context, filter model.Filter) ([]model.Note, error)
	updateFunc  func(ctx context.Context, id int64, input model.NoteInput) error
	deleteFunc  func(ctx context.Context, id int64) error
	archiveFunc func(ctx context.Context, id int64) error
	statsFunc   func(ctx context.Context) ([]model.StatusStats, error)
	lookupFunc  func(ctx context.Context, folio int64) (model.LookupCode, error)
	pingFunc    func(ctx context.Context) error
}

func (m *mockNoteService) Create(ctx context.Context, input model.NoteInput) (model.Note, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, input)
	}
	return model.Note{}, nil
}

func (m *mockNoteService) Get(ctx context.Context, id int64) (model.Note, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return model.Note{}, nil
}

func (m *mockNoteService) List(ctx context.Context, filter model.Filter) ([]model.Note, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []model.Note{}, nil
}

func (m *mockNoteService) Update(ctx context.Context, id int64, input model.NoteInput) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, input)
	}
	return nil
}

func (m *mockNoteService) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockNoteService) Archive(ctx context.Context, id int64) error {
	if m.archiveFunc != nil {
		return m.archiveFunc(ctx, id)
	}
	return nil
}

func (m *mockNoteService) Stats(ctx context.Context) ([]model.StatusStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return nil, nil
}

func (m *mockNoteService) GenerateLookupCode(ctx context.Context, folio int64) (model.LookupCode, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, folio)
	}
	return model.LookupCode{}, nil
}

func (m *mockNoteService) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   *int            `json:"total"`
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.HTTP.RateLimitRPS = 10000
	cfg.HTTP.RateLimitBurst = 10000
	return cfg
}

func newTestRouter(svc *mockNoteService) http.Handler {
	return NewRouter(NewHandler(svc, zerolog.Nop()), testConfig(), zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func TestListNotes_ParsesFilter(t *testing.T) {
	// Arrange
	var got model.Filter
	svc := &mockNoteService{
		listFunc: func(ctx context.Context, filter model.Filter) ([]model.Note, error) {
			got = filter
			return []model.Note{{ID: 2, Title: "b"}, {ID: 1, Title: "a"}}, nil
		},
	}

	// Act
	rec, resp := do(t, newTestRouter(svc), http.MethodGet, "/api/notes?cliente=Acme&titulo=%25off&limit=5", "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Filter{Customer: "Acme", Title: "%off", Limit: 5}, got)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Total)
	assert.Equal(t, 2, *resp.Total)

	var data []model.Note
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, int64(2), data[0].ID)
}

func TestListNotes_BadLimit(t *testing.T) {
	called := false
	svc := &mockNoteService{
		listFunc: func(ctx context.Context, filter model.Filter) ([]model.Note, error) {
			called = true
			return nil, nil
		},
	}

	for _, limit := range []string{"abc", "-1", "1.5"} {
		rec, resp := do(t, newTestRouter(svc), http.MethodGet, "/api/notes?limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
		assert.False(t, resp.Success)
	}
	assert.False(t, called, "service must not be called on bad limit")
}

func TestGetNote_Success(t *testing.T) {
	// Arrange
	expected := model.Note{ID: 7, Title: "Test Title", Content: "Test Content", Status: model.StatusActive}
	svc := &mockNoteService{
		getFunc: func(ctx context.Context, id int64) (model.Note, error) {
			if id == 7 {
				return expected, nil
			}
			return model.Note{}, errs.New(errs.NotFound, "note not found")
		},
	}

	// Act
	rec, resp := do(t, newTestRouter(svc), http.MethodGet, "/api/notes/7", "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var note model.Note
	require.NoError(t, json.Unmarshal(resp.Data, &note))
	assert.Equal(t, expected.ID, note.ID)
	assert.Equal(t, expected.Title, note.Title)
	assert.Equal(t, model.StatusActive, note.Status)
}

func TestGetNote_NotFound(t *testing.T) {
	svc := &mockNoteService{
		getFunc: func(ctx context.Context, id int64) (model.Note, error) {
			return model.Note{}, errs.New(errs.NotFound, "note not found")
		},
	}

	rec, resp := do(t, newTestRouter(svc), http.MethodGet, "/api/notes/999", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "note not found", resp.Message)
}

func TestBadPathParams(t *testing.T) {
	h := newTestRouter(&mockNoteService{})

	tests := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/notes/abc", ""},
		{http.MethodGet, "/api/notes/0", ""},
		{http.MethodPut, "/api/notes/x1", `{"titulo":"t","contenido":"c"}`},
		{http.MethodDelete, "/api/notes/-3", ""},
		{http.MethodPatch, "/api/notes/1.5/archive", ""},
		{http.MethodGet, "/api/notes/qr/folio", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec, resp := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestCreateNote_Success(t *testing.T) {
	// Arrange
	var got model.NoteInput
	svc := &mockNoteService{
		createFunc: func(ctx context.Context, input model.NoteInput) (model.Note, error) {
			got = input
			n := input.Normalize().Note()
			n.ID = 11
			n.Status = model.StatusActive
			return n, nil
		},
	}
	body := `{"titulo":"Reunión","contenido":"Seguimiento","cliente":"Empresa ABC","clientPhone":"555","noteType":"cita"}`

	// Act
	rec, resp := do(t, newTestRouter(svc), http.MethodPost, "/api/notes", body)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Reunión", got.Title)
	assert.Equal(t, "555", got.ClientPhone)
	assert.Equal(t, "cita", got.NoteType)

	var note model.Note
	require.NoError(t, json.Unmarshal(resp.Data, &note))
	assert.Equal(t, int64(11), note.ID)
	assert.Equal(t, "Empresa ABC", note.Customer)
}

func TestCreateNote_MalformedJSON(t *testing.T) {
	called := false
	svc := &mockNoteService{
		createFunc: func(ctx context.Context, input model.NoteInput) (model.Note, error) {
			called = true
			return model.Note{}, nil
		},
	}

	for _, body := range []string{`{"titulo":`, `[1,2]`, `"x"`} {
		rec, resp := do(t, newTestRouter(svc), http.MethodPost, "/api/notes", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.False(t, resp.Success)
	}

	rec, _ := do(t, newTestRouter(svc), http.MethodPost, "/api/notes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestCreateNote_ValidationError(t *testing.T) {
	svc := &mockNoteService{
		createFunc: func(ctx context.Context, input model.NoteInput) (model.Note, error) {
			return model.Note{}, errs.New(errs.Validation, "title and content are required")
		},
	}

	rec, resp := do(t, newTestRouter(svc), http.MethodPost, "/api/notes", `{"titulo":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title and content are required", resp.Message)
}

func TestCreateNote_StoreErrorIsGeneric(t *testing.T) {
	svc := &mockNoteService{
		createFunc: func(ctx context.Context, input model.NoteInput) (model.Note, error) {
			return model.Note{}, errs.Wrap(errs.Store, "failed to create note", errors.New("SQLITE_FULL: disk /var/lib is full"))
		},
	}

	rec, resp := do(t, newTestRouter(svc), http.MethodPost, "/api/notes", `{"titulo":"t","contenido":"c"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to create note", resp.Message)
	assert.NotContains(t, rec.Body.String(), "SQLITE")
}

func TestUpdateNote_EchoesInput(t *testing.T) {
	var gotID int64
	svc := &mockNoteService{
		updateFunc: func(ctx context.Context, id int64, input model.NoteInput) error {
			gotID = id
			return nil
		},
	}

	rec, resp := do(t, newTestRouter(svc), http.MethodPut, "/api/notes/4",
		`{"titulo":" t ","contenido":"c","estado":"archivada"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), gotID)

	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, float64(4), data["id"])
	assert.Equal(t, "t", data["titulo"])
	assert.Equal(t, "archivada", data["estado"])
	assert.Equal(t, "consulta", data["noteType"])
}

func TestUpdateNote_NotFound(t *testing.T) {
	svc := &mockNoteService{
		updateFunc: func(ctx context.Context, id int64, input model.NoteInput) error {
			return errs.New(errs.NotFound, "note not found")
		},
	}

	rec, _ := do(t, newTestRouter(svc), http.MethodPut, "/api/notes/4", `{"titulo":"t","contenido":"c"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAndArchive(t *testing.T) {
	var deleted, archived int64
	svc := &mockNoteService{
		deleteFunc: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
		archiveFunc: func(ctx context.Context, id int64) error {
			if id == 9 {
				return errs.New(errs.NotFound, "note not found")
			}
			archived = id
			return nil
		},
	}
	h := newTestRouter(svc)

	rec, resp := do(t, h, http.MethodDelete, "/api/notes/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data)
	assert.Equal(t, int64(3), deleted)

	rec, _ = do(t, h, http.MethodPatch, "/api/notes/5/archive", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), archived)

	rec, _ = do(t, h, http.MethodPatch, "/api/notes/9/archive", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	svc := &mockNoteService{
		statsFunc: func(ctx context.Context) ([]model.StatusStats, error) {
			return []model.StatusStats{
				{Status: model.StatusActive, Total: 3, Today: 1},
				{Status: model.StatusArchived, Total: 1},
			}, nil
		},
	}

	rec, resp := do(t, newTestRouter(svc), http.MethodGet, "/api/notes/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`[{"estado":"activa","total":3,"hoy":1},{"estado":"archivada","total":1,"hoy":0}]`,
		string(resp.Data))
}

func TestLookupCode(t *testing.T) {
	svc := &mockNoteService{
		lookupFunc: func(ctx context.Context, folio int64) (model.LookupCode, error) {
			return model.LookupCode{URL: "u", PNG: []byte("\x89PNG"), DataURL: "data:image/png;base64,iVBORw=="}, nil
		},
	}
	h := newTestRouter(svc)

	rec, resp := do(t, h, http.MethodGet, "/api/notes/qr/12", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data string
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "data:image/png;base64,iVBORw==", data)

	rec, _ = do(t, h, http.MethodGet, "/api/notes/qr/12?format=png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestLookupCode_EncodingError(t *testing.T) {
	svc := &mockNoteService{
		lookupFunc: func(ctx context.Context, folio int64) (model.LookupCode, error) {
			return model.LookupCode{}, errs.Wrap(errs.Encoding, "failed to generate QR code", errors.New("content too long"))
		},
	}

	rec, resp := do(t, newTestRouter(svc), http.MethodGet, "/api/notes/qr/12", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to generate QR code", resp.Message)
}

func TestHealth(t *testing.T) {
	healthy := true
	svc := &mockNoteService{
		pingFunc: func(ctx context.Context) error {
			if healthy {
				return nil
			}
			return errs.New(errs.Store, "database unavailable")
		},
	}
	h := newTestRouter(svc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	assert.NoError(t, err)

	healthy = false
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newTestRouter(&mockNoteService{})

	rec, resp := do(t, h, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)

	rec, _ = do(t, h, http.MethodPost, "/api/notes/stats", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoversFromPanic(t *testing.T) {
	svc := &mockNoteService{
		statsFunc: func(ctx context.Context) ([]model.StatusStats, error) {
			panic("boom")
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStaticPagesAndSwagger(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"index.html":    "home",
		"notas.html":    "notas",
		"contacto.html": "contacto",
		"acerca.html":   "acerca",
		"app.js":        "js",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	cfg := testConfig()
	cfg.Server.StaticDir = dir
	cfg.Swagger.Enabled = true
	h := NewRouter(NewHandler(&mockNoteService{}, zerolog.Nop()), cfg, zerolog.Nop())

	for path, want := range map[string]string{
		"/":         "home",
		"/notas":    "notas",
		"/contacto": "contacto",
		"/acerca":   "acerca",
		"/app.js":   "js",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Сквозной сценарий: HTTP -> сервис -> in-memory репозиторий
func TestEndToEnd_ArchiveScenario(t *testing.T) {
	svc := notes.NewNoteService(memory.NewRepository(), qrcode.NewEncoder(64))
	h := NewRouter(NewHandler(svc, zerolog.Nop()), testConfig(), zerolog.Nop())

	rec, resp := do(t, h, http.MethodPost, "/api/notes",
		`{"titulo":"Reunión","contenido":"Seguimiento","cliente":"Empresa ABC"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Note
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	id := created.ID

	target := "/api/notes/" + jsonNumber(id)

	rec, resp = do(t, h, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Note
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "Reunión", got.Title)
	assert.Equal(t, model.StatusActive, got.Status)

	rec, _ = do(t, h, http.MethodPatch, target+"/archive", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, target, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, target+"/archive", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = do(t, h, http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, *resp.Total)

	rec, resp = do(t, h, http.MethodGet, "/api/notes/qr/"+jsonNumber(id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(resp.Data), "data:image/png;base64,")
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
