package checkin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_LoadEmpty(t *testing.T) {
	ledger := NewLedger(t.TempDir())

	done, skipped := ledger.Load("2026-06-01")
	assert.Empty(t, done)
	assert.Empty(t, skipped)
}

func TestLedger_RecordAndLoad(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	today := "2026-06-01"

	require.NoError(t, ledger.RecordAnswer(today, "breakfast", true))
	require.NoError(t, ledger.RecordAnswer(today, "gym", false))
	require.NoError(t, ledger.RecordAnswer(today, "water", true))

	done, skipped := ledger.Load(today)
	assert.Equal(t, []string{"breakfast", "water"}, done)
	assert.Equal(t, []string{"gym"}, skipped)
}

func TestLedger_AnswerRecordedOncePerDay(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	today := "2026-06-01"

	require.NoError(t, ledger.RecordAnswer(today, "breakfast", true))
	// a second answer for the same id changes nothing, not even yes -> no
	require.NoError(t, ledger.RecordAnswer(today, "breakfast", false))

	done, skipped := ledger.Load(today)
	assert.Equal(t, []string{"breakfast"}, done)
	assert.Empty(t, skipped)
}

func TestLedger_DateRollover(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir)

	require.NoError(t, ledger.RecordAnswer("2026-06-01", "breakfast", true))

	done, skipped := ledger.Load("2026-06-02")
	assert.Empty(t, done)
	assert.Empty(t, skipped)

	// the stale record is gone for good
	_, err := os.Stat(filepath.Join(dir, ledgerFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestLedger_CorruptFileSelfHeals(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir)

	require.NoError(t,
		os.WriteFile(filepath.Join(dir, ledgerFileName), []byte("{not json"), 0o600),
	)

	done, skipped := ledger.Load("2026-06-01")
	assert.Empty(t, done)
	assert.Empty(t, skipped)

	// and recording works again afterwards
	require.NoError(t, ledger.RecordAnswer("2026-06-01", "water", true))
	done, _ = ledger.Load("2026-06-01")
	assert.Equal(t, []string{"water"}, done)
}
