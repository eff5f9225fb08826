package profile

import (
	"github.com/rosyfit/backend/internal/checkin"
)

// UserProfile is the app user's personal data. BMI is derived from
// weight and height on every save.
type UserProfile struct {
	Name         string  `json:"name"`
	Surname      string  `json:"surname"`
	BirthDate    string  `json:"birthDate"`
	Weight       float64 `json:"weight"`
	Height       float64 `json:"height"`
	BMI          float64 `json:"bmi"`
	StartWeight  float64 `json:"startWeight"`
	TargetWeight float64 `json:"targetWeight"`
}

// GymSettings mirrors checkin.GymSchedule in its stored form.
type GymSettings struct {
	IsActive  bool     `json:"isActive"`
	Days      []string `json:"days"`
	TimeOfDay string   `json:"timeOfDay"`
}

func (g GymSettings) schedule() checkin.GymSchedule {
	return checkin.GymSchedule{
		Active:    g.IsActive,
		Days:      g.Days,
		TimeOfDay: g.TimeOfDay,
	}
}

func defaultProfile() UserProfile {
	return UserProfile{
		Name:         "Atleta",
		StartWeight:  70.0,
		TargetWeight: 60.0,
	}
}
