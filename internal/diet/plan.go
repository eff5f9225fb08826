package diet

import "strings"

// Weekdays in plan order, Monday first. Keys into WeeklyDiet.Days
// and ConsumptionLedger.Days.
var Weekdays = []string{
	"Lunedì", "Martedì", "Mercoledì", "Giovedì", "Venerdì", "Sabato", "Domenica",
}

// Meal slot keys of a day plan.
const (
	SlotColazione = "colazione"
	SlotSpuntino  = "spuntino"
	SlotPranzo    = "pranzo"
	SlotSpuntino2 = "spuntino2"
	SlotCena      = "cena"
)

// SlotKeys in aggregation and presentation order.
var SlotKeys = []string{SlotColazione, SlotSpuntino, SlotPranzo, SlotSpuntino2, SlotCena}

type Ingredient struct {
	Qty  string `json:"qty"`
	Item string `json:"item"`
}

// MealEntry is one meal of a day plan. IsFree marks a cheat meal,
// purely cosmetic.
type MealEntry struct {
	FullTitle   string       `json:"fullTitle"`
	Desc        string       `json:"desc"`
	Ingredients []Ingredient `json:"ingredientsList,omitempty"`
	Kcal        float64      `json:"kcal"`
	Carbs       float64      `json:"carbs"`
	Protein     float64      `json:"protein"`
	Fats        float64      `json:"fats"`
	IsFree      bool         `json:"isFree,omitempty"`
}

// DayPlan maps slot keys to meals. Spuntino2 is optional, days
// without a second snack simply omit it.
type DayPlan map[string]MealEntry

// WeeklyDiet is one named week of day plans, keyed by Italian
// weekday name. Multiple named weeks coexist per user, exactly one
// is active for aggregation at any time.
type WeeklyDiet struct {
	Name string             `json:"name"`
	Days map[string]DayPlan `json:"days"`
}

// SlotConsumption records a consumed toggle plus the target category
// ids the meal text matched at toggle-on time. Reusing the captured
// ids at toggle-off keeps the on/off pair exactly inverse even when
// the meal text is edited in between.
type SlotConsumption struct {
	Consumed  bool     `json:"consumed"`
	TargetIDs []string `json:"targetIds,omitempty"`
}

// ConsumptionLedger tracks which slots are marked consumed,
// weekday -> slot key -> state.
type ConsumptionLedger struct {
	Days map[string]map[string]SlotConsumption `json:"days"`
}

// FormatIngredients joins an ingredient list into a meal description,
// "60g Albume + 30g Avena + Yogurt" style. Blank items are skipped.
func FormatIngredients(ingredients []Ingredient) string {
	var parts []string
	for _, ing := range ingredients {
		item := strings.TrimSpace(ing.Item)
		if item == "" {
			continue
		}
		if ing.Qty != "" {
			parts = append(parts, ing.Qty+" "+item)
		} else {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, " + ")
}

// Consumed reports whether the slot is marked consumed on the day.
func (l ConsumptionLedger) Consumed(day, slot string) bool {
	return l.Days[day][slot].Consumed
}

// DefaultPlan returns the seed weekly diet used when a user has no
// stored plan yet.
func DefaultPlan() WeeklyDiet {
	return WeeklyDiet{
		Name: "Settimana Base",
		Days: map[string]DayPlan{
			"Lunedì": {
				SlotColazione: {FullTitle: "Pancake Fit", Desc: "60g Albume + 30g Avena + Yogurt", Ingredients: []Ingredient{{"60g", "Albume"}, {"30g", "Avena"}, {"", "Yogurt"}}, Kcal: 345, Carbs: 32, Protein: 24, Fats: 12},
				SlotSpuntino:  {FullTitle: "Parmigiano & Noci", Desc: "40g Parmigiano + 2 Noci", Ingredients: []Ingredient{{"40g", "Parmigiano"}, {"2", "Noci"}}, Kcal: 280, Carbs: 8, Protein: 15, Fats: 20},
				SlotPranzo:    {FullTitle: "Riso e Tacchino", Desc: "70g Riso + 150g Tacchino", Ingredients: []Ingredient{{"70g", "Riso"}, {"150g", "Tacchino"}}, Kcal: 420, Carbs: 55, Protein: 28, Fats: 10},
				SlotCena:      {FullTitle: "Carne Rossa", Desc: "170g Tagliata + Verdure", Ingredients: []Ingredient{{"170g", "Tagliata"}, {"", "Verdure"}}, Kcal: 480, Carbs: 40, Protein: 42, Fats: 18},
			},
			"Martedì": {
				SlotColazione: {FullTitle: "Toast Salato", Desc: "Pane + Uova + Avocado", Ingredients: []Ingredient{{"", "Pane"}, {"", "Uova"}, {"", "Avocado"}}, Kcal: 320, Carbs: 25, Protein: 12, Fats: 18},
				SlotSpuntino:  {FullTitle: "Frutta e Mandorle", Desc: "1 Mela + 10g Mandorle", Ingredients: []Ingredient{{"1", "Mela"}, {"10g", "Mandorle"}}, Kcal: 180, Carbs: 25, Protein: 3, Fats: 8},
				SlotPranzo:    {FullTitle: "Pasta e Legumi", Desc: "70g Pasta + Ceci", Ingredients: []Ingredient{{"70g", "Pasta"}, {"", "Ceci"}}, Kcal: 510, Carbs: 70, Protein: 22, Fats: 14},
				SlotCena:      {FullTitle: "Pesce al forno", Desc: "Orata + Patate", Ingredients: []Ingredient{{"", "Orata"}, {"", "Patate"}}, Kcal: 430, Carbs: 38, Protein: 45, Fats: 10},
			},
			"Mercoledì": {
				SlotColazione: {FullTitle: "Porridge", Desc: "Avena + Latte + Cacao", Ingredients: []Ingredient{{"", "Avena"}, {"", "Latte"}, {"", "Cacao"}}, Kcal: 345, Carbs: 32, Protein: 24, Fats: 12},
				SlotSpuntino:  {FullTitle: "Yogurt", Desc: "Yogurt Greco + Miele", Ingredients: []Ingredient{{"", "Yogurt Greco"}, {"", "Miele"}}, Kcal: 280, Carbs: 8, Protein: 15, Fats: 20},
				SlotPranzo:    {FullTitle: "Pollo al Curry", Desc: "Riso Basmati + Pollo", Ingredients: []Ingredient{{"", "Riso Basmati"}, {"", "Pollo"}}, Kcal: 460, Carbs: 55, Protein: 42, Fats: 8},
				SlotCena:      {FullTitle: "Omelette", Desc: "2 Uova + Spinaci", Ingredients: []Ingredient{{"2", "Uova"}, {"", "Spinaci"}}, Kcal: 410, Carbs: 38, Protein: 26, Fats: 18},
			},
			"Giovedì": {
				SlotColazione: {FullTitle: "Yogurt Bowl", Desc: "Yogurt + Frutti Rossi", Ingredients: []Ingredient{{"", "Yogurt"}, {"", "Frutti Rossi"}}, Kcal: 330, Carbs: 40, Protein: 18, Fats: 10},
				SlotSpuntino:  {FullTitle: "Barretta Proteica", Desc: "Low sugar", Ingredients: []Ingredient{{"", "Low sugar"}}, Kcal: 180, Carbs: 25, Protein: 20, Fats: 8},
				SlotPranzo:    {FullTitle: "Bistecca", Desc: "Manzo ai ferri + Insalata", Ingredients: []Ingredient{{"", "Manzo ai ferri"}, {"", "Insalata"}}, Kcal: 490, Carbs: 38, Protein: 45, Fats: 22},
				SlotCena:      {FullTitle: "Tonno e Fagioli", Desc: "Insalatona mista", Ingredients: []Ingredient{{"", "Insalatona mista"}}, Kcal: 520, Carbs: 50, Protein: 35, Fats: 20},
			},
			"Venerdì": {
				SlotColazione: {FullTitle: "Pancake", Desc: "Albumi + Farina integrale", Ingredients: []Ingredient{{"", "Albumi"}, {"", "Farina integrale"}}, Kcal: 345, Carbs: 32, Protein: 24, Fats: 12},
				SlotSpuntino:  {FullTitle: "Cracker e Fesa", Desc: "Pacchetto cracker + Tacchino", Ingredients: []Ingredient{{"1", "Pacchetto cracker"}, {"", "Tacchino"}}, Kcal: 280, Carbs: 30, Protein: 15, Fats: 5},
				SlotPranzo:    {FullTitle: "Pasta al Tonno", Desc: "80g Pasta + Tonno naturale", Ingredients: []Ingredient{{"80g", "Pasta"}, {"", "Tonno naturale"}}, Kcal: 470, Carbs: 52, Protein: 40, Fats: 12},
				SlotCena:      {FullTitle: "Salmone", Desc: "Trancio salmone + Verdure", Ingredients: []Ingredient{{"1", "Trancio salmone"}, {"", "Verdure"}}, Kcal: 450, Carbs: 38, Protein: 35, Fats: 18},
			},
			"Sabato": {
				SlotColazione: {FullTitle: "Fette Biscottate", Desc: "Marmellata zero + Fette", Ingredients: []Ingredient{{"", "Marmellata zero"}, {"", "Fette"}}, Kcal: 320, Carbs: 45, Protein: 5, Fats: 5},
				SlotSpuntino:  {FullTitle: "Frutto", Desc: "Banana", Ingredients: []Ingredient{{"", "Banana"}}, Kcal: 100, Carbs: 25, Protein: 1, Fats: 0},
				SlotPranzo:    {FullTitle: "Riso Freddo", Desc: "Condiriso light", Ingredients: []Ingredient{{"", "Condiriso light"}}, Kcal: 440, Carbs: 60, Protein: 10, Fats: 10},
				SlotCena:      {FullTitle: "PIZZA LIBERA", Desc: "Goditi la serata!", Ingredients: []Ingredient{{"", "Goditi la serata!"}}, Kcal: 800, Carbs: 100, Protein: 30, Fats: 30, IsFree: true},
			},
			"Domenica": {
				SlotColazione: {FullTitle: "Cappuccio e Brioche", Desc: "Bar o casa", Ingredients: []Ingredient{{"", "Bar o casa"}}, Kcal: 400, Carbs: 50, Protein: 8, Fats: 15},
				SlotSpuntino:  {FullTitle: "Frutto", Desc: "Mela", Ingredients: []Ingredient{{"1", "Mela"}}, Kcal: 80, Carbs: 20, Protein: 0, Fats: 0},
				SlotPranzo:    {FullTitle: "Pranzo Domenicale", Desc: "Pasta al forno light", Ingredients: []Ingredient{{"", "Pasta al forno light"}}, Kcal: 600, Carbs: 70, Protein: 30, Fats: 20},
				SlotCena:      {FullTitle: "Minestrone", Desc: "Verdure miste + Crostini", Ingredients: []Ingredient{{"", "Verdure miste"}, {"", "Crostini"}}, Kcal: 300, Carbs: 40, Protein: 10, Fats: 5},
			},
		},
	}
}
