package diet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosyfit/backend/internal/docstore"
)

func TestRepo_SeedsDefaultPlan(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(docstore.NewTestStore())

	doc, err := repo.GetWeeks(ctx, "rosy")
	require.NoError(t, err)
	assert.Equal(t, "Settimana Base", doc.ActiveWeek)
	require.Contains(t, doc.Weeks, "Settimana Base")
	assert.Len(t, doc.Weeks["Settimana Base"].Days, 7)

	plan, err := repo.ActivePlan(ctx, "rosy")
	require.NoError(t, err)
	assert.Equal(t, 420.0, plan.Days["Lunedì"][SlotPranzo].Kcal)
	assert.True(t, plan.Days["Sabato"][SlotCena].IsFree)
}

func TestRepo_SaveAndActivateWeek(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(docstore.NewTestStore())

	cutWeek := WeeklyDiet{
		Days: map[string]DayPlan{
			"Lunedì": {
				SlotPranzo: {FullTitle: "Pollo e Riso", Desc: "Cut week", Kcal: 350},
			},
		},
	}
	require.NoError(t, repo.SaveWeek(ctx, "rosy", "Definizione", cutWeek))

	// the default week stays active until switched
	plan, err := repo.ActivePlan(ctx, "rosy")
	require.NoError(t, err)
	assert.Equal(t, "Settimana Base", plan.Name)

	require.NoError(t, repo.SetActiveWeek(ctx, "rosy", "Definizione"))
	plan, err = repo.ActivePlan(ctx, "rosy")
	require.NoError(t, err)
	assert.Equal(t, "Definizione", plan.Name)
	assert.Equal(t, 350.0, plan.Days["Lunedì"][SlotPranzo].Kcal)

	assert.ErrorIs(t,
		repo.SetActiveWeek(ctx, "rosy", "Inesistente"),
		ErrWeekNotFound,
	)
}

func TestRepo_DeleteWeek(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(docstore.NewTestStore())

	require.NoError(t, repo.SaveWeek(ctx, "rosy", "Definizione", WeeklyDiet{}))

	// the active week is protected
	err := repo.DeleteWeek(ctx, "rosy", "Settimana Base")
	require.Error(t, err)

	require.NoError(t, repo.DeleteWeek(ctx, "rosy", "Definizione"))
	doc, err := repo.GetWeeks(ctx, "rosy")
	require.NoError(t, err)
	assert.NotContains(t, doc.Weeks, "Definizione")

	assert.ErrorIs(t, repo.DeleteWeek(ctx, "rosy", "Definizione"), ErrWeekNotFound)
}

func TestRepo_UpdateMeal(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(docstore.NewTestStore())

	updated := MealEntry{FullTitle: "Pasta al Pesto", Desc: "80g Pasta + Pesto", Kcal: 520, Carbs: 70, Protein: 15, Fats: 18}
	require.NoError(t, repo.UpdateMeal(ctx, "rosy", "Lunedì", SlotPranzo, updated))

	plan, err := repo.ActivePlan(ctx, "rosy")
	require.NoError(t, err)
	assert.Equal(t, updated, plan.Days["Lunedì"][SlotPranzo])
	// other meals untouched
	assert.Equal(t, "Pancake Fit", plan.Days["Lunedì"][SlotColazione].FullTitle)
}

func TestRepo_Consumption(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(docstore.NewTestStore())

	ledger, err := repo.GetConsumption(ctx, "rosy")
	require.NoError(t, err)
	assert.Empty(t, ledger.Days)

	ledger.Days["Lunedì"] = map[string]SlotConsumption{
		SlotPranzo: {Consumed: true, TargetIDs: []string{"white_meat"}},
	}
	require.NoError(t, repo.SaveConsumption(ctx, "rosy", ledger))

	reloaded, err := repo.GetConsumption(ctx, "rosy")
	require.NoError(t, err)
	assert.True(t, reloaded.Consumed("Lunedì", SlotPranzo))
	assert.Equal(t, []string{"white_meat"}, reloaded.Days["Lunedì"][SlotPranzo].TargetIDs)
}
