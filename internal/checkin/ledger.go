package checkin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const ledgerFileName = "rosyfit_answers_v2.json"

type ledgerRecord struct {
	Date    string   `json:"date"`
	Done    []string `json:"done"`
	Skipped []string `json:"skipped"`
}

// Ledger persists today's answered and skipped question ids across
// restarts. A record stored under a different date is stale and gets
// discarded on load. A corrupt or unreadable file heals to an empty
// ledger, never an error to the caller.
type Ledger struct {
	path string
}

func NewLedger(dataRootPath string) *Ledger {
	return &Ledger{
		path: filepath.Join(dataRootPath, ledgerFileName),
	}
}

// Load returns the done and skipped sets recorded for today.
func (l *Ledger) Load(today string) (done, skipped []string) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("check-in ledger read failed, starting empty: %s", err)
		}
		return nil, nil
	}

	var record ledgerRecord
	if err := json.Unmarshal(data, &record); err != nil {
		log.Warnf("check-in ledger corrupt, discarding: %s", err)
		l.discard()
		return nil, nil
	}

	if record.Date != today {
		l.discard()
		return nil, nil
	}

	return record.Done, record.Skipped
}

// RecordAnswer adds questionID to done (yes) or skipped (no) and
// persists the whole record atomically. An id already recorded for
// today is left where it is.
func (l *Ledger) RecordAnswer(today, questionID string, isYes bool) error {
	done, skipped := l.Load(today)

	if contains(done, questionID) || contains(skipped, questionID) {
		return nil
	}

	if isYes {
		done = append(done, questionID)
	} else {
		skipped = append(skipped, questionID)
	}

	record := ledgerRecord{
		Date:    today,
		Done:    done,
		Skipped: skipped,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal check-in ledger: %w", err)
	}

	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write check-in ledger: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		return fmt.Errorf("rename check-in ledger: %w", err)
	}

	return nil
}

func (l *Ledger) discard() {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		log.Warnf("check-in ledger discard failed: %s", err)
	}
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
