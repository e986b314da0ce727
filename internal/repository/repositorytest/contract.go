// Package repositorytest содержит общие поведенческие тесты для реализаций NoteRepository.
package repositorytest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-notes/internal/errs"
	"customer-notes/internal/model"
	"customer-notes/internal/repository"
)

// Factory создает пустой репозиторий для одного теста
type Factory func(t *testing.T) repository.NoteRepository

// Run прогоняет все проверки контракта
func Run(t *testing.T, newRepo Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo repository.NoteRepository)
	}{
		{"CreateThenGet", testCreateThenGet},
		{"IDsAreNeverReused", testIDsAreNeverReused},
		{"ListOnlyActiveNewestFirst", testListOnlyActiveNewestFirst},
		{"ListCustomerSubstring", testListCustomerSubstring},
		{"ListTitleAndCustomer", testListTitleAndCustomer},
		{"ListWildcardsAreLiteral", testListWildcardsAreLiteral},
		{"ListLimit", testListLimit},
		{"ArchiveTwiceIsNotFound", testArchiveTwiceIsNotFound},
		{"DeletedRejectsChanges", testDeletedRejectsChanges},
		{"UpdateOverwritesFields", testUpdateOverwritesFields},
		{"MissingIDIsNotFound", testMissingIDIsNotFound},
		{"StatsGroupsByStatus", testStatsGroupsByStatus},
		{"StatsTodayWindow", testStatsTodayWindow},
		{"ArchiveScenario", testArchiveScenario},
		{"ConcurrentArchiveHasOneWinner", testConcurrentArchiveHasOneWinner},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

func note(title, content, customer string) model.Note {
	return model.NoteInput{Title: title, Content: content, Customer: customer}.Normalize().Note()
}

func create(t *testing.T, repo repository.NoteRepository, n model.Note) model.Note {
	t.Helper()
	created, err := repo.Create(context.Background(), n)
	require.NoError(t, err)
	return created
}

func ids(notes []model.Note) []int64 {
	out := make([]int64, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err), "unexpected error: %v", err)
}

func testCreateThenGet(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	in := model.Note{
		Title:       "Llamada",
		Content:     "Confirmar cita",
		Customer:    "Cliente VIP",
		ClientPhone: "+52 55 1234 5678",
		NoteType:    "seguimiento",
		Status:      model.StatusActive,
	}

	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Content, got.Content)
	assert.Equal(t, in.Customer, got.Customer)
	assert.Equal(t, in.ClientPhone, got.ClientPhone)
	assert.Equal(t, in.NoteType, got.NoteType)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func testIDsAreNeverReused(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	seen := map[int64]bool{}
	var last int64

	for i := 0; i < 5; i++ {
		n := create(t, repo, note("t", "c", ""))
		require.False(t, seen[n.ID], "id %d reused", n.ID)
		require.Greater(t, n.ID, last)
		seen[n.ID] = true
		last = n.ID

		if i%2 == 0 {
			require.NoError(t, repo.SetStatus(ctx, n.ID, model.StatusDeleted))
		}
	}
}

func testListOnlyActiveNewestFirst(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	first := create(t, repo, note("first", "c", ""))
	archived := create(t, repo, note("archived", "c", ""))
	second := create(t, repo, note("second", "c", ""))
	deleted := create(t, repo, note("deleted", "c", ""))
	third := create(t, repo, note("third", "c", ""))

	require.NoError(t, repo.SetStatus(ctx, archived.ID, model.StatusArchived))
	require.NoError(t, repo.SetStatus(ctx, deleted.ID, model.StatusDeleted))

	notes, err := repo.List(ctx, model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, ids(notes))

	for i, n := range notes {
		assert.Equal(t, model.StatusActive, n.Status)
		if i > 0 {
			assert.False(t, n.CreatedAt.After(notes[i-1].CreatedAt))
		}
	}
}

func testListCustomerSubstring(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	corp := create(t, repo, note("a", "c", "Acme Corp"))
	grupo := create(t, repo, note("b", "c", "Grupo Acme"))
	create(t, repo, note("c", "c", "Beta"))
	create(t, repo, note("d", "c", ""))
	gone := create(t, repo, note("e", "c", "Acme Archivada"))
	require.NoError(t, repo.SetStatus(ctx, gone.ID, model.StatusArchived))

	notes, err := repo.List(ctx, model.Filter{Customer: "Acme"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{corp.ID, grupo.ID}, ids(notes))

	// без учета регистра для ASCII
	notes, err = repo.List(ctx, model.Filter{Customer: "acme"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{corp.ID, grupo.ID}, ids(notes))
}

func testListTitleAndCustomer(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	both := create(t, repo, note("Reunión semanal", "c", "Empresa ABC"))
	create(t, repo, note("Reunión semanal", "c", "Otra"))
	create(t, repo, note("Llamada", "c", "Empresa ABC"))

	notes, err := repo.List(ctx, model.Filter{Customer: "ABC", Title: "semanal"})
	require.NoError(t, err)
	assert.Equal(t, []int64{both.ID}, ids(notes))
}

func testListWildcardsAreLiteral(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	percent := create(t, repo, note("t", "c", "50% off"))
	under := create(t, repo, note("t", "c", "a_b"))
	slash := create(t, repo, note("t", "c", `x\y`))
	create(t, repo, note("t", "c", "plain"))
	create(t, repo, note("t", "c", "aXb"))

	tests := []struct {
		filter string
		want   []int64
	}{
		{"%", []int64{percent.ID}},
		{"_", []int64{under.ID}},
		{`\`, []int64{slash.ID}},
		{"a_b", []int64{under.ID}},
	}

	for _, tt := range tests {
		notes, err := repo.List(ctx, model.Filter{Customer: tt.filter})
		require.NoError(t, err)
		assert.ElementsMatch(t, tt.want, ids(notes), "filter %q", tt.filter)
	}
}

func testListLimit(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	var created []model.Note
	for i := 0; i < 4; i++ {
		created = append(created, create(t, repo, note("t", "c", "")))
	}

	notes, err := repo.List(ctx, model.Filter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{created[3].ID, created[2].ID}, ids(notes))

	notes, err = repo.List(ctx, model.Filter{Limit: 0})
	require.NoError(t, err)
	assert.Len(t, notes, 4)
}

func testArchiveTwiceIsNotFound(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	n := create(t, repo, note("t", "c", ""))

	require.NoError(t, repo.SetStatus(ctx, n.ID, model.StatusArchived))

	_, err := repo.GetByID(ctx, n.ID)
	requireNotFound(t, err)
	requireNotFound(t, repo.SetStatus(ctx, n.ID, model.StatusArchived))
}

func testDeletedRejectsChanges(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	n := create(t, repo, note("t", "c", ""))

	require.NoError(t, repo.SetStatus(ctx, n.ID, model.StatusDeleted))

	input := model.NoteInput{Title: "nuevo", Content: "nuevo"}.Normalize()
	requireNotFound(t, repo.Update(ctx, n.ID, input))
	requireNotFound(t, repo.SetStatus(ctx, n.ID, model.StatusArchived))
	requireNotFound(t, repo.SetStatus(ctx, n.ID, model.StatusDeleted))
}

func testUpdateOverwritesFields(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	n := create(t, repo, model.Note{
		Title: "t", Content: "c", Customer: "old", ClientPhone: "111", NoteType: "consulta", Status: model.StatusActive,
	})

	input := model.NoteInput{Title: "t2", Content: "c2", NoteType: "queja"}.Normalize()
	require.NoError(t, repo.Update(ctx, n.ID, input))

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Title)
	assert.Equal(t, "c2", got.Content)
	assert.Equal(t, "", got.Customer)
	assert.Equal(t, "", got.ClientPhone)
	assert.Equal(t, "queja", got.NoteType)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	archive := model.NoteInput{Title: "t3", Content: "c3", Status: model.StatusArchived}.Normalize()
	require.NoError(t, repo.Update(ctx, n.ID, archive))
	_, err = repo.GetByID(ctx, n.ID)
	requireNotFound(t, err)
}

func testMissingIDIsNotFound(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	const missing = int64(987654)

	_, err := repo.GetByID(ctx, missing)
	requireNotFound(t, err)
	requireNotFound(t, repo.Update(ctx, missing, model.NoteInput{Title: "t", Content: "c"}.Normalize()))
	requireNotFound(t, repo.SetStatus(ctx, missing, model.StatusArchived))
	requireNotFound(t, repo.SetStatus(ctx, missing, model.StatusDeleted))
}

func testStatsGroupsByStatus(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		create(t, repo, note("t", "c", ""))
	}
	archived := create(t, repo, note("t", "c", ""))
	require.NoError(t, repo.SetStatus(ctx, archived.ID, model.StatusArchived))

	now := time.Now()
	stats, err := repo.Stats(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, []model.StatusStats{
		{Status: model.StatusActive, Total: 3, Today: 3},
		{Status: model.StatusArchived, Total: 1, Today: 1},
	}, stats)
}

func testStatsTodayWindow(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	create(t, repo, note("t", "c", ""))

	future := time.Now().Add(24 * time.Hour)
	stats, err := repo.Stats(ctx, future, future.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].Total)
	assert.Equal(t, int64(0), stats[0].Today)

	empty, err := repo.Stats(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, empty, 1)
	assert.Equal(t, int64(0), empty[0].Today)
}

func testArchiveScenario(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	n := create(t, repo, note("Reunión", "Seguimiento", "Empresa ABC"))

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reunión", got.Title)
	assert.Equal(t, "Seguimiento", got.Content)
	assert.Equal(t, "Empresa ABC", got.Customer)
	assert.Equal(t, model.StatusActive, got.Status)

	require.NoError(t, repo.SetStatus(ctx, n.ID, model.StatusArchived))

	_, err = repo.GetByID(ctx, n.ID)
	requireNotFound(t, err)

	notes, err := repo.List(ctx, model.Filter{})
	require.NoError(t, err)
	assert.NotContains(t, ids(notes), n.ID)
}

func testConcurrentArchiveHasOneWinner(t *testing.T, repo repository.NoteRepository) {
	ctx := context.Background()
	n := create(t, repo, note("t", "c", ""))

	const workers = 8
	results := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := model.StatusArchived
			if i%2 == 1 {
				status = model.StatusDeleted
			}
			results[i] = repo.SetStatus(ctx, n.ID, status)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		assert.Equal(t, errs.NotFound, errs.CodeOf(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, winners)
}

func testPing(t *testing.T, repo repository.NoteRepository) {
	assert.NoError(t, repo.Ping(context.Background()))
}
