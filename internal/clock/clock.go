package clock

import (
	"fmt"
	"time"
)

// Clock provides the current time. Handlers and services take a Clock
// instead of calling time.Now directly so tests can pin the moment.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

// italianWeekdays is indexed by time.Weekday (Sunday = 0).
var italianWeekdays = [7]string{
	"Domenica",
	"Lunedì",
	"Martedì",
	"Mercoledì",
	"Giovedì",
	"Venerdì",
	"Sabato",
}

// WeekdayName returns the capitalized Italian name of t's weekday.
func WeekdayName(t time.Time) string {
	return italianWeekdays[t.Weekday()]
}

// DateKey returns the calendar date of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekID returns the week identifier of t in the form "2026-W23".
// Weeks start on Sunday and week 1 is the week containing January 1st.
func WeekID(t time.Time) string {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	daysSinceJan1 := t.YearDay() - 1
	week := (daysSinceJan1+int(jan1.Weekday())+1+6) / 7
	return fmt.Sprintf("%d-W%d", t.Year(), week)
}
