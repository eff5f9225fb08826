package checkin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rosyfit/backend/internal/clock"
)

// Reminder is a due meal reminder, delivered at most once
// per slot per day.
type Reminder struct {
	SlotID  string `json:"slotId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type reminderSlot struct {
	id        string
	label     string
	startHour int
	endHour   int
	message   string
}

var reminderSlots = []reminderSlot{
	{"breakfast", "Colazione", 7, 10, "Buongiorno Atleta! ☕ È ora di fare una sana colazione."},
	{"snack_morning", "Spuntino", 10, 12, "Piccola pausa? 🍎 Ricordati lo spuntino di metà mattina!"},
	{"lunch", "Pranzo", 12, 14, "È ora di pranzo! 🥗 Nutri i tuoi muscoli."},
	{"snack_afternoon", "Merenda", 16, 18, "Energy boost! 🍌 Tempo di merenda."},
	{"dinner", "Cena", 19, 21, "Cena time! 🍲 Chiudi la giornata con un pasto bilanciato."},
}

// Reminders computes which meal reminders are due right now.
type Reminders struct {
	clock clock.Clock

	mu   sync.Mutex
	sent map[string]struct{}
}

func NewReminders(clk clock.Clock) *Reminders {
	return &Reminders{
		clock: clk,
		sent:  make(map[string]struct{}),
	}
}

// Due returns the reminders for slots whose window contains the current
// hour and which were not already delivered today, and stamps them
// as delivered.
func (r *Reminders) Due() []Reminder {
	now := r.clock.Now()
	hour := now.Hour()
	today := clock.DateKey(now)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneStale(today)

	var due []Reminder
	for _, slot := range reminderSlots {
		if hour < slot.startHour || hour >= slot.endHour {
			continue
		}
		stamp := fmt.Sprintf("%s_%s", today, slot.id)
		if _, sent := r.sent[stamp]; sent {
			continue
		}
		r.sent[stamp] = struct{}{}
		due = append(due, Reminder{
			SlotID:  slot.id,
			Title:   fmt.Sprintf("ROSYFIT: %s", slot.label),
			Message: slot.message,
		})
	}

	return due
}

func (r *Reminders) pruneStale(today string) {
	for stamp := range r.sent {
		if !strings.HasPrefix(stamp, today+"_") {
			delete(r.sent, stamp)
		}
	}
}
