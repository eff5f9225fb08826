package diet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ledgerWith(day string, slots map[string]bool) ConsumptionLedger {
	ledger := ConsumptionLedger{Days: make(map[string]map[string]SlotConsumption)}
	ledger.Days[day] = make(map[string]SlotConsumption)
	for slot, consumed := range slots {
		ledger.Days[day][slot] = SlotConsumption{Consumed: consumed}
	}
	return ledger
}

func TestAggregate_OnlyConsumedSlotsCount(t *testing.T) {
	plan := DefaultPlan()

	ledger := ledgerWith("Lunedì", map[string]bool{SlotPranzo: true})
	totals := Aggregate(plan, ledger, "Lunedì")

	assert.Equal(t, Totals{Kcal: 420, Carbs: 55, Protein: 28, Fats: 10}, totals)
}

func TestAggregate_NothingConsumed(t *testing.T) {
	plan := DefaultPlan()

	totals := Aggregate(plan, ConsumptionLedger{}, "Lunedì")
	assert.Equal(t, Totals{}, totals)
}

func TestAggregate_WholeDay(t *testing.T) {
	plan := DefaultPlan()

	ledger := ledgerWith("Lunedì", map[string]bool{
		SlotColazione: true,
		SlotSpuntino:  true,
		SlotPranzo:    true,
		SlotCena:      true,
	})
	totals := Aggregate(plan, ledger, "Lunedì")

	assert.Equal(t, Totals{
		Kcal:    345 + 280 + 420 + 480,
		Carbs:   32 + 8 + 55 + 40,
		Protein: 24 + 15 + 28 + 42,
		Fats:    12 + 20 + 10 + 18,
	}, totals)
}

func TestAggregate_UnknownDayIsZero(t *testing.T) {
	plan := DefaultPlan()
	ledger := ledgerWith("Lunedì", map[string]bool{SlotPranzo: true})

	assert.Equal(t, Totals{}, Aggregate(plan, ledger, "Festivo"))
}

func TestAggregate_MissingSlotContributesNothing(t *testing.T) {
	// the default plan has no spuntino2 on any day
	plan := DefaultPlan()
	ledger := ledgerWith("Martedì", map[string]bool{SlotSpuntino2: true})

	assert.Equal(t, Totals{}, Aggregate(plan, ledger, "Martedì"))
}

func TestAggregate_ToggleOnOffZeroDrift(t *testing.T) {
	plan := DefaultPlan()

	before := Aggregate(plan, ConsumptionLedger{}, "Giovedì")

	ledger := ledgerWith("Giovedì", map[string]bool{SlotCena: true})
	during := Aggregate(plan, ledger, "Giovedì")
	assert.Equal(t, 520.0, during.Kcal)

	ledger.Days["Giovedì"][SlotCena] = SlotConsumption{Consumed: false}
	after := Aggregate(plan, ledger, "Giovedì")

	assert.Equal(t, before, after)
}

func TestFormatIngredients(t *testing.T) {
	desc := FormatIngredients([]Ingredient{
		{Qty: "60g", Item: "Albume"},
		{Qty: "30g", Item: "Avena"},
		{Qty: "", Item: "Yogurt"},
		{Qty: "2", Item: "  "},
	})
	assert.Equal(t, "60g Albume + 30g Avena + Yogurt", desc)

	assert.Equal(t, "", FormatIngredients(nil))
}
