package checkin

import (
	"errors"
	"sync"
	"time"

	"github.com/rosyfit/backend/internal/clock"
)

type StateName string

const (
	StateIdle       StateName = "idle"
	StatePresenting StateName = "presenting"
	StateCommitting StateName = "committing"
	StateClosed     StateName = "closed"
)

var (
	// ErrCommitting means an answer is being committed and
	// further input is disabled until it lands.
	ErrCommitting = errors.New("an answer is already being committed")
	// ErrNotCurrent means the answered question is not the one
	// currently presented.
	ErrNotCurrent = errors.New("question is not the current one")
	// ErrClosed means there is nothing left to answer.
	ErrClosed = errors.New("check-in is closed")
)

type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type State struct {
	Name     StateName `json:"state"`
	Question *Question `json:"question,omitempty"`
	Progress Progress  `json:"progress"`
}

// Machine drives the one-at-a-time daily check-in. The remaining
// question list is always recomputed from the catalog minus the
// ledger, so answered and skipped ids never reappear within a day
// and a new day resets naturally through the ledger's date check.
type Machine struct {
	ledger      *Ledger
	clock       clock.Clock
	commitDelay time.Duration

	mu         sync.Mutex
	committing *Question
}

// NewMachine creates a Machine. commitDelay is the feedback pause
// applied while an answer commits; tests pass 0.
func NewMachine(ledger *Ledger, clk clock.Clock, commitDelay time.Duration) *Machine {
	return &Machine{
		ledger:      ledger,
		clock:       clk,
		commitDelay: commitDelay,
	}
}

// Current returns the state to present: the head of the remaining
// question list, or Closed when nothing is left for today.
func (m *Machine) Current(gym GymSchedule) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	catalog, remaining, answered := m.computeRemaining(gym)

	if m.committing != nil {
		return State{
			Name:     StateCommitting,
			Question: m.committing,
			Progress: Progress{Answered: answered, Total: len(catalog)},
		}
	}

	if len(remaining) == 0 {
		name := StateClosed
		if answered == 0 {
			name = StateIdle
		}
		return State{
			Name:     name,
			Progress: Progress{Answered: answered, Total: len(catalog)},
		}
	}

	return State{
		Name:     StatePresenting,
		Question: &remaining[0],
		Progress: Progress{Answered: answered, Total: len(catalog)},
	}
}

// Answer commits a yes/no answer for the currently presented question,
// then returns the next state. While committing, further input is
// rejected with ErrCommitting.
func (m *Machine) Answer(questionID string, isYes bool, gym GymSchedule) (State, error) {
	m.mu.Lock()
	if m.committing != nil {
		m.mu.Unlock()
		return State{}, ErrCommitting
	}

	_, remaining, _ := m.computeRemaining(gym)
	if len(remaining) == 0 {
		m.mu.Unlock()
		return State{}, ErrClosed
	}
	current := remaining[0]
	if current.ID != questionID {
		m.mu.Unlock()
		return State{}, ErrNotCurrent
	}

	m.committing = &current
	m.mu.Unlock()

	if m.commitDelay > 0 {
		time.Sleep(m.commitDelay)
	}

	today := clock.DateKey(m.clock.Now())
	err := m.ledger.RecordAnswer(today, questionID, isYes)

	m.mu.Lock()
	m.committing = nil
	m.mu.Unlock()

	if err != nil {
		return State{}, err
	}

	return m.Current(gym), nil
}

// Dismiss closes the check-in surface without recording anything.
// Unanswered questions stay pending for the next session of the day.
func (m *Machine) Dismiss(gym GymSchedule) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.committing != nil {
		return State{}, ErrCommitting
	}

	catalog, _, answered := m.computeRemaining(gym)

	return State{
		Name:     StateClosed,
		Progress: Progress{Answered: answered, Total: len(catalog)},
	}, nil
}

// computeRemaining resolves the catalog for now and subtracts the
// ledger's done and skipped sets. Must be called with mu held.
func (m *Machine) computeRemaining(gym GymSchedule) (catalog, remaining []Question, answered int) {
	now := m.clock.Now()
	catalog = ResolveCatalog(now.Hour(), clock.WeekdayName(now), gym)

	done, skipped := m.ledger.Load(clock.DateKey(now))

	for _, q := range catalog {
		if contains(done, q.ID) || contains(skipped, q.ID) {
			answered++
			continue
		}
		remaining = append(remaining, q)
	}

	return catalog, remaining, answered
}
