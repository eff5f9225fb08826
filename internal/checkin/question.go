package checkin

// Question is one daily check-in prompt. Identity is the ID,
// stable within a day. Questions are catalog-generated, never stored.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// GymSchedule says on which weekdays the gym questions apply.
// Days holds capitalized Italian weekday names.
type GymSchedule struct {
	Active    bool     `json:"isActive"`
	Days      []string `json:"days"`
	TimeOfDay string   `json:"timeOfDay"`
}

type mealSlot struct {
	question  Question
	startHour int
	endHour   int
}

// mealSlots in presentation order. A slot applies when the
// current hour falls in [startHour, endHour).
var mealSlots = []mealSlot{
	{Question{ID: "breakfast", Text: "Hai fatto colazione?", Icon: "☕"}, 6, 11},
	{Question{ID: "snack_morning", Text: "Hai fatto lo spuntino?", Icon: "🍎"}, 11, 13},
	{Question{ID: "lunch", Text: "Hai pranzato?", Icon: "🥗"}, 13, 16},
	{Question{ID: "snack_afternoon", Text: "Hai fatto merenda?", Icon: "🍌"}, 16, 19},
	{Question{ID: "dinner", Text: "Hai cenato?", Icon: "🍲"}, 19, 23},
}

var (
	gymQuestion         = Question{ID: "gym", Text: "Sei andata in palestra?", Icon: "💪"}
	postWorkoutQuestion = Question{ID: "post_workout", Text: "Hai fatto il post-workout?", Icon: "🥤"}
	waterQuestion       = Question{ID: "water", Text: "Hai bevuto abbastanza acqua oggi?", Icon: "💧"}
)

// ResolveCatalog returns the questions applicable right now, in
// presentation order: at most one meal slot question for the current
// hour window, the gym pair on scheduled gym days, and water always last.
func ResolveCatalog(hour int, weekday string, gym GymSchedule) []Question {
	var questions []Question

	for _, slot := range mealSlots {
		if hour >= slot.startHour && hour < slot.endHour {
			questions = append(questions, slot.question)
		}
	}

	if gym.Active {
		for _, day := range gym.Days {
			if day == weekday {
				questions = append(questions, gymQuestion, postWorkoutQuestion)
				break
			}
		}
	}

	questions = append(questions, waterQuestion)

	return questions
}
