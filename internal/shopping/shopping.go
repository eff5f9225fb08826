package shopping

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Item is one row of the shopping list. Qty is free text, a leading
// number in it drives the price recalculation.
type Item struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Done  bool    `json:"done"`
	Qty   string  `json:"qty"`
	Price float64 `json:"price"`
}

// Suggestion is an ingredient taken from the active diet plan, with
// the number of meals it appears in.
type Suggestion struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CapitalizeName uppercases the first letter, the rest stays as typed.
func CapitalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:]
}

// parseQty extracts the numeric part of a quantity string. Anything
// unparsable or zero counts as a single unit.
func parseQty(qty string) float64 {
	qty = strings.TrimSpace(qty)
	end := 0
	for end < len(qty) {
		c := qty[end]
		if (c >= '0' && c <= '9') || c == '.' || c == ',' {
			end++
			continue
		}
		break
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(qty[:end], ",", "."), 64)
	if err != nil || value == 0 {
		return 1
	}
	return value
}

// RescalePrice adjusts a unit-proportional price when the quantity
// changes, rounded to cents.
func RescalePrice(price float64, oldQty, newQty string) float64 {
	oldUnits := parseQty(oldQty)
	newUnits := parseQty(newQty)
	return math.Round(price/oldUnits*newUnits*100) / 100
}
