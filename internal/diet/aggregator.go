package diet

// Totals are the nutrition sums of one day's consumed meals.
type Totals struct {
	Kcal    float64 `json:"kcal"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fats    float64 `json:"fats"`
}

// Aggregate sums the nutrition of the slots that are present in the
// day plan AND marked consumed in the ledger. Recomputed from scratch
// on every call, so toggling a slot off exactly subtracts what
// toggling it on added. An unknown day yields all-zero totals.
func Aggregate(weekly WeeklyDiet, ledger ConsumptionLedger, selectedDay string) Totals {
	var totals Totals

	dayPlan, ok := weekly.Days[selectedDay]
	if !ok {
		return totals
	}

	for _, slot := range SlotKeys {
		entry, present := dayPlan[slot]
		if !present || !ledger.Consumed(selectedDay, slot) {
			continue
		}
		totals.Kcal += entry.Kcal
		totals.Carbs += entry.Carbs
		totals.Protein += entry.Protein
		totals.Fats += entry.Fats
	}

	return totals
}
