package mealfeed

import "time"

// Categories a post can be filed under, in display order.
var Categories = []string{
	"Colazione", "Spuntino", "Pranzo", "Cena", "Pasto Fit", "Cheat Meal", "Altro",
}

// Nutrition is the estimated macro breakdown of a photographed meal.
type Nutrition struct {
	Calories int `json:"calories"`
	Carbs    int `json:"carbs"`
	Protein  int `json:"protein"`
	Fats     int `json:"fats"`
}

// MealPost is one photo entry of the feed. Image holds the compressed
// picture as a base64 data URL.
type MealPost struct {
	ID          int        `json:"id"`
	UserID      string     `json:"userId"`
	UserName    string     `json:"userName"`
	Type        string     `json:"type"`
	Image       string     `json:"image"`
	Time        string     `json:"time"`
	Description string     `json:"description"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
