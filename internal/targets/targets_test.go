package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCategories(t *testing.T) {
	testCases := []struct {
		text    string
		matched []string
	}{
		{"Tonno in scatola", []string{"fish", "processed"}},
		{"Pollo ai ferri", []string{"white_meat"}},
		{"Pasta al Tonno 80g Pasta + Tonno naturale", []string{"fish", "processed"}},
		{"Riso e Tacchino", []string{"white_meat"}},
		{"Carne Rossa 170g Tagliata + Verdure", []string{"red_meat"}},
		{"Omelette 2 Uova + Spinaci", []string{"eggs"}},
		{"Parmigiano & Noci", []string{"cheese"}},
		{"Pasta e Legumi 70g Pasta + Ceci", []string{"legumes"}},
		{"Salmone al forno", []string{"fish"}},
		{"Riso Freddo Condiriso light", nil},
		{"", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.matched, MatchCategories(tc.text))
		})
	}
}

func TestReconcile_SeedsDefaults(t *testing.T) {
	targets := Reconcile(nil, "", "2026-W23", DefaultTargets())

	require.Len(t, targets, 7)
	assert.Equal(t, "white_meat", targets[0].ID)
	for _, target := range targets {
		assert.Zero(t, target.Current)
	}
}

func TestReconcile_WeekBoundaryResetsCounts(t *testing.T) {
	stored := DefaultTargets()
	stored[0].Current = 3
	stored[2].Current = 5

	reset := Reconcile(stored, "2024-W10", "2024-W11", DefaultTargets())
	for _, target := range reset {
		assert.Zero(t, target.Current, target.ID)
	}
	// ranges survive the reset
	assert.Equal(t, 2, reset[0].Min)
	assert.Equal(t, 4, reset[0].Max)
}

func TestReconcile_SameWeekIsIdempotent(t *testing.T) {
	stored := DefaultTargets()
	stored[1].Current = 2

	same := Reconcile(stored, "2024-W10", "2024-W10", DefaultTargets())
	assert.Equal(t, stored, same)

	again := Reconcile(same, "2024-W10", "2024-W10", DefaultTargets())
	assert.Equal(t, same, again)
}

func TestApplyToggle(t *testing.T) {
	targets := DefaultTargets()

	toggled := ApplyToggle(targets, []string{"fish", "processed"}, 1)
	assert.Equal(t, 1, findTarget(t, toggled, "fish").Current)
	assert.Equal(t, 1, findTarget(t, toggled, "processed").Current)
	assert.Equal(t, 0, findTarget(t, toggled, "white_meat").Current)

	// off is the exact inverse
	reverted := ApplyToggle(toggled, []string{"fish", "processed"}, -1)
	assert.Equal(t, targets, reverted)
}

func TestApplyToggle_ClampsAtZero(t *testing.T) {
	targets := DefaultTargets()

	toggled := ApplyToggle(targets, []string{"eggs"}, -1)
	assert.Equal(t, 0, findTarget(t, toggled, "eggs").Current)
}

func TestApplyToggle_DoesNotMutateInput(t *testing.T) {
	targets := DefaultTargets()
	_ = ApplyToggle(targets, []string{"fish"}, 1)
	assert.Equal(t, 0, findTarget(t, targets, "fish").Current)
}

func findTarget(t *testing.T, targets []WeeklyTarget, id string) WeeklyTarget {
	t.Helper()
	for _, target := range targets {
		if target.ID == id {
			return target
		}
	}
	t.Fatalf("target %s not found", id)
	return WeeklyTarget{}
}
