package targets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosyfit/backend/internal/diet"
	"github.com/rosyfit/backend/internal/docstore"
)

type adjustableClock struct {
	t time.Time
}

func (c *adjustableClock) Now() time.Time {
	return c.t
}

func TestService_SeedAndToggle(t *testing.T) {
	ctx := context.Background()
	clk := &adjustableClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(NewRepo(docstore.NewTestStore()), clk)

	targets, err := service.Targets(ctx, "rosy")
	require.NoError(t, err)
	require.Len(t, targets, 7)

	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", []string{"fish"}, 1))
	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", []string{"fish"}, 1))

	targets, err = service.Targets(ctx, "rosy")
	require.NoError(t, err)
	assert.Equal(t, 2, findTarget(t, targets, "fish").Current)

	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", []string{"fish"}, -1))
	targets, err = service.Targets(ctx, "rosy")
	require.NoError(t, err)
	assert.Equal(t, 1, findTarget(t, targets, "fish").Current)

	// no matches, nothing to do
	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", nil, 1))
}

func TestService_WeekRollover(t *testing.T) {
	ctx := context.Background()
	clk := &adjustableClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(NewRepo(docstore.NewTestStore()), clk)

	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", []string{"fish", "legumes"}, 1))

	// a week later the counts are back to zero, ranges untouched
	clk.t = clk.t.AddDate(0, 0, 7)
	targets, err := service.Targets(ctx, "rosy")
	require.NoError(t, err)
	for _, target := range targets {
		assert.Zero(t, target.Current, target.ID)
	}
	assert.Equal(t, 2, findTarget(t, targets, "fish").Min)
}

func TestService_UpdateRanges(t *testing.T) {
	ctx := context.Background()
	clk := &adjustableClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(NewRepo(docstore.NewTestStore()), clk)

	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", []string{"fish"}, 1))

	updated, err := service.UpdateRanges(ctx, "rosy", []WeeklyTarget{
		{ID: "fish", Name: "Pesce fresco", Min: 3, Max: 5},
	})
	require.NoError(t, err)

	fish := findTarget(t, updated, "fish")
	assert.Equal(t, "Pesce fresco", fish.Name)
	assert.Equal(t, 3, fish.Min)
	assert.Equal(t, 5, fish.Max)
	// the current count survives a range edit
	assert.Equal(t, 1, fish.Current)
}

func TestService_Resync(t *testing.T) {
	ctx := context.Background()
	clk := &adjustableClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(NewRepo(docstore.NewTestStore()), clk)

	// drift: counters way off from the ledger
	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", []string{"fish", "fish"}, 1))
	require.NoError(t, service.ApplyToggleForUser(ctx, "rosy", []string{"red_meat"}, 1))

	plan := diet.DefaultPlan()
	ledger := diet.ConsumptionLedger{Days: map[string]map[string]diet.SlotConsumption{
		"Lunedì": {
			// Riso e Tacchino -> white_meat
			diet.SlotPranzo: {Consumed: true},
			// Carne Rossa, Tagliata -> red_meat
			diet.SlotCena: {Consumed: true},
		},
		"Venerdì": {
			// Pasta al Tonno -> fish + processed
			diet.SlotPranzo: {Consumed: true},
			// not consumed, must not count
			diet.SlotCena: {Consumed: false},
		},
	}}

	targets, err := service.Resync(ctx, "rosy", plan, ledger)
	require.NoError(t, err)

	assert.Equal(t, 1, findTarget(t, targets, "white_meat").Current)
	assert.Equal(t, 1, findTarget(t, targets, "red_meat").Current)
	assert.Equal(t, 1, findTarget(t, targets, "fish").Current)
	assert.Equal(t, 1, findTarget(t, targets, "processed").Current)
	assert.Equal(t, 0, findTarget(t, targets, "legumes").Current)
}
