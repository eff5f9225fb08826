package goals

import "time"

// WeightEntry is one logged body weight measurement.
type WeightEntry struct {
	ID        int       `json:"id"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Progress summarizes the journey from start to target weight.
// Percent is clamped to [0, 100].
type Progress struct {
	CurrentWeight float64 `json:"currentWeight"`
	StartWeight   float64 `json:"startWeight"`
	TargetWeight  float64 `json:"targetWeight"`
	Percent       float64 `json:"percent"`
}

// ComputeProgress returns how far current sits between start and
// target. A start equal to the target short-circuits to 100.
func ComputeProgress(current, start, target float64) Progress {
	progress := Progress{
		CurrentWeight: current,
		StartWeight:   start,
		TargetWeight:  target,
	}

	if start == target {
		progress.Percent = 100
		return progress
	}

	percent := (start - current) / (start - target) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	progress.Percent = percent

	return progress
}
