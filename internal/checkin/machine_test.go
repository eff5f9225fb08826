package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosyfit/backend/internal/clock"
)

// lunchtime on a Monday
var testInstant = time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	return NewMachine(
		NewLedger(t.TempDir()),
		clock.Fixed{T: testInstant},
		0,
	)
}

func TestMachine_FullRun(t *testing.T) {
	m := newTestMachine(t)
	noGym := GymSchedule{}

	state := m.Current(noGym)
	require.Equal(t, StatePresenting, state.Name)
	require.NotNil(t, state.Question)
	assert.Equal(t, "lunch", state.Question.ID)
	assert.Equal(t, Progress{Answered: 0, Total: 2}, state.Progress)

	state, err := m.Answer("lunch", true, noGym)
	require.NoError(t, err)
	require.Equal(t, StatePresenting, state.Name)
	assert.Equal(t, "water", state.Question.ID)
	assert.Equal(t, Progress{Answered: 1, Total: 2}, state.Progress)

	state, err = m.Answer("water", false, noGym)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, state.Name)
	assert.Nil(t, state.Question)
	assert.Equal(t, Progress{Answered: 2, Total: 2}, state.Progress)

	// everything answered, nothing to do
	_, err = m.Answer("water", true, noGym)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMachine_GymDayOrder(t *testing.T) {
	m := newTestMachine(t)
	gym := GymSchedule{Active: true, Days: []string{"Lunedì"}}

	state := m.Current(gym)
	require.Equal(t, StatePresenting, state.Name)
	assert.Equal(t, "lunch", state.Question.ID)
	assert.Equal(t, 4, state.Progress.Total)

	var order []string
	for state.Name == StatePresenting {
		order = append(order, state.Question.ID)
		var err error
		state, err = m.Answer(state.Question.ID, true, gym)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"lunch", "gym", "post_workout", "water"}, order)
	assert.Equal(t, StateClosed, state.Name)
}

func TestMachine_AnswerNotCurrent(t *testing.T) {
	m := newTestMachine(t)
	noGym := GymSchedule{}

	// water is second in line, lunch is presented first
	_, err := m.Answer("water", true, noGym)
	assert.ErrorIs(t, err, ErrNotCurrent)
}

func TestMachine_DismissKeepsQuestionsPending(t *testing.T) {
	m := newTestMachine(t)
	noGym := GymSchedule{}

	state, err := m.Answer("lunch", true, noGym)
	require.NoError(t, err)
	require.Equal(t, StatePresenting, state.Name)

	state, err = m.Dismiss(noGym)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, state.Name)

	// the next session of the same day presents the pending question again
	state = m.Current(noGym)
	require.Equal(t, StatePresenting, state.Name)
	assert.Equal(t, "water", state.Question.ID)
}

func TestMachine_AnsweredNeverReappears(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	clk := clock.Fixed{T: testInstant}
	noGym := GymSchedule{}

	m := NewMachine(ledger, clk, 0)
	_, err := m.Answer("lunch", false, noGym)
	require.NoError(t, err)

	// a fresh machine over the same ledger picks up where we left off
	m2 := NewMachine(ledger, clk, 0)
	state := m2.Current(noGym)
	require.Equal(t, StatePresenting, state.Name)
	assert.Equal(t, "water", state.Question.ID)
	assert.Equal(t, Progress{Answered: 1, Total: 2}, state.Progress)
}

func TestMachine_IdleOutsideAllWindows(t *testing.T) {
	// 5 in the morning, no meal slot applies, only water remains
	earlyMorning := time.Date(2026, 6, 1, 5, 0, 0, 0, time.UTC)
	m := NewMachine(NewLedger(t.TempDir()), clock.Fixed{T: earlyMorning}, 0)

	state := m.Current(GymSchedule{})
	require.Equal(t, StatePresenting, state.Name)
	assert.Equal(t, "water", state.Question.ID)
	assert.Equal(t, 1, state.Progress.Total)
}
