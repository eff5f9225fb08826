package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/rosyfit/backend/internal/checkin"
	"github.com/rosyfit/backend/internal/docstore"
)

const (
	collectionUsers    = "users"
	collectionSettings = "settings"
)

// Repo persists user profiles and gym settings as documents.
type Repo struct {
	store docstore.Store
}

func NewRepo(store docstore.Store) *Repo {
	return &Repo{store: store}
}

// Get returns the stored profile, or the default one for a fresh user.
func (r *Repo) Get(ctx context.Context, userID string) (UserProfile, error) {
	data, err := r.store.Get(ctx, collectionUsers, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return defaultProfile(), nil
	}
	if err != nil {
		return UserProfile{}, fmt.Errorf("get profile: %w", err)
	}

	var profile UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return UserProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}

	return profile, nil
}

// Save persists the profile, recomputing the BMI from weight and height.
func (r *Repo) Save(ctx context.Context, userID string, profile UserProfile) (UserProfile, error) {
	if profile.Height > 0 {
		heightMeters := profile.Height
		if heightMeters > 3 {
			// stored in centimeters
			heightMeters /= 100
		}
		profile.BMI = math.Round(profile.Weight/(heightMeters*heightMeters)*10) / 10
	} else {
		profile.BMI = 0
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return UserProfile{}, fmt.Errorf("marshal profile: %w", err)
	}
	if err := r.store.Set(ctx, collectionUsers, userID, data); err != nil {
		return UserProfile{}, fmt.Errorf("save profile: %w", err)
	}

	return profile, nil
}

// GetGymSettings returns the stored gym settings, inactive by default.
func (r *Repo) GetGymSettings(ctx context.Context, userID string) (GymSettings, error) {
	data, err := r.store.Get(ctx, collectionSettings, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return GymSettings{TimeOfDay: "afternoon"}, nil
	}
	if err != nil {
		return GymSettings{}, fmt.Errorf("get gym settings: %w", err)
	}

	var settings GymSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return GymSettings{}, fmt.Errorf("unmarshal gym settings: %w", err)
	}

	return settings, nil
}

func (r *Repo) SaveGymSettings(ctx context.Context, userID string, settings GymSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal gym settings: %w", err)
	}
	if err := r.store.Set(ctx, collectionSettings, userID, data); err != nil {
		return fmt.Errorf("save gym settings: %w", err)
	}
	return nil
}

// GymSchedule adapts the stored settings for the check-in catalog.
func (r *Repo) GymSchedule(ctx context.Context, userID string) (checkin.GymSchedule, error) {
	settings, err := r.GetGymSettings(ctx, userID)
	if err != nil {
		return checkin.GymSchedule{}, err
	}
	return settings.schedule(), nil
}

// WeightGoal returns the start and target weight for progress
// computation.
func (r *Repo) WeightGoal(ctx context.Context, userID string) (start, target float64, err error) {
	profile, err := r.Get(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return profile.StartWeight, profile.TargetWeight, nil
}
