package targets

import (
	"github.com/rosyfit/backend/internal/diet"
)

// RecomputeFromLedger rebuilds every Current count from the ground
// truth: the active plan's meal texts and the consumption ledger.
// Used by the explicit resync operation to repair drift the
// incremental toggle deltas may have accumulated.
func RecomputeFromLedger(plan diet.WeeklyDiet, ledger diet.ConsumptionLedger, targets []WeeklyTarget) []WeeklyTarget {
	recomputed := make([]WeeklyTarget, len(targets))
	copy(recomputed, targets)
	for i := range recomputed {
		recomputed[i].Current = 0
	}

	counts := make(map[string]int)
	for day, slots := range ledger.Days {
		dayPlan, ok := plan.Days[day]
		if !ok {
			continue
		}
		for slot, state := range slots {
			if !state.Consumed {
				continue
			}
			meal, present := dayPlan[slot]
			if !present {
				continue
			}
			for _, id := range MatchCategories(meal.FullTitle + " " + meal.Desc) {
				counts[id]++
			}
		}
	}

	for i := range recomputed {
		recomputed[i].Current = counts[recomputed[i].ID]
	}

	return recomputed
}
