package diet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosyfit/backend/internal/docstore"
	"github.com/rosyfit/backend/internal/telemetry/metrics"
)

type fakeTargetUpdater struct {
	matched []string
	applied []appliedToggle
}

type appliedToggle struct {
	ids   []string
	delta int
}

func (f *fakeTargetUpdater) MatchCategories(_ string) []string {
	return f.matched
}

func (f *fakeTargetUpdater) ApplyToggleForUser(_ context.Context, _ string, matchedIDs []string, delta int) error {
	f.applied = append(f.applied, appliedToggle{ids: matchedIDs, delta: delta})
	return nil
}

func newTestDietHandler(t *testing.T, targets *fakeTargetUpdater) *Handler {
	t.Helper()
	return NewHandler(
		NewRepo(docstore.NewTestStore()),
		targets,
		"rosy",
		metrics.NewTestManager(),
	)
}

func TestHandler_GetWeeks(t *testing.T) {
	handler := newTestDietHandler(t, &fakeTargetUpdater{})

	req := httptest.NewRequest(http.MethodGet, "/diet", nil)
	rec := httptest.NewRecorder()
	handler.HandleGetWeeks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp WeeksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Settimana Base", resp.ActiveWeek)
	assert.Contains(t, resp.Weeks, "Settimana Base")
}

func TestHandler_GetTotals(t *testing.T) {
	handler := newTestDietHandler(t, &fakeTargetUpdater{})

	req := httptest.NewRequest(http.MethodGet, "/diet/totals/Lunedì", nil)
	req = mux.SetURLVars(req, map[string]string{"day": "Lunedì"})
	rec := httptest.NewRecorder()
	handler.HandleGetTotals(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var totals Totals
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, Totals{}, totals)
}

func TestHandler_ToggleMeal(t *testing.T) {
	targets := &fakeTargetUpdater{matched: []string{"white_meat"}}
	handler := newTestDietHandler(t, targets)

	toggle := func() ToggleResponse {
		req := httptest.NewRequest(
			http.MethodPost, "/diet/toggle",
			strings.NewReader(`{"day":"Lunedì","slot":"pranzo"}`),
		)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.HandleToggleMeal(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ToggleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	// toggle on
	resp := toggle()
	assert.True(t, resp.Consumed)
	assert.Equal(t, 420.0, resp.Totals.Kcal)
	require.Len(t, targets.applied, 1)
	assert.Equal(t, appliedToggle{ids: []string{"white_meat"}, delta: 1}, targets.applied[0])

	// toggle off, exact inverse via the captured ids
	targets.matched = []string{"fish"} // a meal edit must not change the reversal
	resp = toggle()
	assert.False(t, resp.Consumed)
	assert.Equal(t, 0.0, resp.Totals.Kcal)
	require.Len(t, targets.applied, 2)
	assert.Equal(t, appliedToggle{ids: []string{"white_meat"}, delta: -1}, targets.applied[1])
}

func TestHandler_ToggleMealValidation(t *testing.T) {
	handler := newTestDietHandler(t, &fakeTargetUpdater{})

	req := httptest.NewRequest(
		http.MethodPost, "/diet/toggle",
		strings.NewReader(`{"day":"Lunedì","slot":"brunch"}`),
	)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.HandleToggleMeal(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// valid slot, but the default plan has no spuntino2 on Lunedì
	req = httptest.NewRequest(
		http.MethodPost, "/diet/toggle",
		strings.NewReader(`{"day":"Lunedì","slot":"spuntino2"}`),
	)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.HandleToggleMeal(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_UpdateMealRebuildsDescription(t *testing.T) {
	handler := newTestDietHandler(t, &fakeTargetUpdater{})

	body := `{
		"day": "Lunedì",
		"slot": "pranzo",
		"meal": {
			"fullTitle": "Riso e Pollo",
			"ingredientsList": [{"qty":"70g","item":"Riso"},{"qty":"150g","item":"Pollo"}],
			"kcal": 430, "carbs": 55, "protein": 35, "fats": 8
		}
	}`
	req := httptest.NewRequest(http.MethodPut, "/diet/meal", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.HandleUpdateMeal(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	plan, err := handler.repo.ActivePlan(context.Background(), "rosy")
	require.NoError(t, err)
	assert.Equal(t, "70g Riso + 150g Pollo", plan.Days["Lunedì"][SlotPranzo].Desc)
}

func TestHandler_ActivateAndDeleteWeek(t *testing.T) {
	handler := newTestDietHandler(t, &fakeTargetUpdater{})
	ctx := context.Background()

	require.NoError(t, handler.repo.SaveWeek(ctx, "rosy", "Definizione", WeeklyDiet{}))

	req := httptest.NewRequest(http.MethodPost, "/diet/week/Definizione/activate", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "Definizione"})
	rec := httptest.NewRecorder()
	handler.HandleActivateWeek(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// now the old default can go
	req = httptest.NewRequest(http.MethodDelete, "/diet/week/Settimana%20Base", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "Settimana Base"})
	rec = httptest.NewRecorder()
	handler.HandleDeleteWeek(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/diet/week/Inesistente/activate", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "Inesistente"})
	rec = httptest.NewRecorder()
	handler.HandleActivateWeek(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
