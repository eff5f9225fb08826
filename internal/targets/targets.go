package targets

import (
	"strings"
)

// WeeklyTarget counts how many times a meal category was eaten this
// week, against a recommended min/max range. Current never goes
// below zero.
type WeeklyTarget struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Current int    `json:"current"`
}

type categoryKeywords struct {
	id       string
	keywords []string
}

// keywordTable maps meal text fragments to target categories. The sets
// deliberately overlap: canned tuna counts as fish and as processed.
var keywordTable = []categoryKeywords{
	{"white_meat", []string{"pollo", "tacchino", "coniglio"}},
	{"red_meat", []string{"carne rossa", "manzo", "vitello", "maiale", "tagliata", "bistecca"}},
	{"fish", []string{"pesce", "tonno", "sgombro", "salmone", "merluzzo", "nasello", "orata", "spigola"}},
	{"eggs", []string{"uova", "uovo", "albume", "albumi", "omelette", "frittata"}},
	{"cheese", []string{"formaggio", "parmigiano", "mozzarella", "ricotta", "grana"}},
	{"legumes", []string{"legumi", "ceci", "fagioli", "lenticchie", "piselli"}},
	{"processed", []string{"tonno", "prosciutto", "affettat", "salume", "wurstel", "scatola"}},
}

// DefaultTargets is the seed catalog for a user without stored targets.
func DefaultTargets() []WeeklyTarget {
	return []WeeklyTarget{
		{ID: "white_meat", Name: "Carne Bianca", Min: 2, Max: 4},
		{ID: "red_meat", Name: "Carne Rossa", Min: 0, Max: 2},
		{ID: "fish", Name: "Pesce", Min: 2, Max: 4},
		{ID: "eggs", Name: "Uova", Min: 1, Max: 4},
		{ID: "cheese", Name: "Formaggi", Min: 1, Max: 3},
		{ID: "legumes", Name: "Legumi", Min: 2, Max: 4},
		{ID: "processed", Name: "Conserve e Affettati", Min: 0, Max: 2},
	}
}

// MatchCategories returns the ids of the categories whose keyword set
// matches the lowercased meal text. A meal can match several
// categories at once, or none.
func MatchCategories(mealText string) []string {
	text := strings.ToLower(mealText)

	var matched []string
	for _, category := range keywordTable {
		for _, keyword := range category.keywords {
			if strings.Contains(text, keyword) {
				matched = append(matched, category.id)
				break
			}
		}
	}

	return matched
}

// Reconcile brings stored targets into the current week: on a week id
// change every Current resets to 0 (id, name and range preserved), and
// an empty store is seeded with the defaults. Idempotent within the
// same week.
func Reconcile(stored []WeeklyTarget, lastUpdateWeekID, currentWeekID string, defaults []WeeklyTarget) []WeeklyTarget {
	if len(stored) == 0 {
		reconciled := make([]WeeklyTarget, len(defaults))
		copy(reconciled, defaults)
		return reconciled
	}

	reconciled := make([]WeeklyTarget, len(stored))
	copy(reconciled, stored)

	if lastUpdateWeekID != currentWeekID {
		for i := range reconciled {
			reconciled[i].Current = 0
		}
	}

	return reconciled
}

// ApplyToggle adds delta to the Current of every target whose id is in
// matchedIDs, clamped at a floor of 0. Unmatched targets are untouched.
func ApplyToggle(targets []WeeklyTarget, matchedIDs []string, delta int) []WeeklyTarget {
	updated := make([]WeeklyTarget, len(targets))
	copy(updated, targets)

	for i := range updated {
		for _, id := range matchedIDs {
			if updated[i].ID != id {
				continue
			}
			updated[i].Current += delta
			if updated[i].Current < 0 {
				updated[i].Current = 0
			}
			break
		}
	}

	return updated
}
