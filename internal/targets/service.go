package targets

import (
	"context"

	"github.com/rosyfit/backend/internal/clock"
	"github.com/rosyfit/backend/internal/diet"
)

// Service keeps the stored targets reconciled with the current week
// and applies toggle deltas. Every read goes through reconciliation,
// so a week boundary crossing is picked up on the next access.
type Service struct {
	repo  *Repo
	clock clock.Clock
}

func NewService(repo *Repo, clk clock.Clock) *Service {
	return &Service{
		repo:  repo,
		clock: clk,
	}
}

// Targets returns the user's targets for the current week, seeding
// and week-resetting as needed. Changes are persisted.
func (s *Service) Targets(ctx context.Context, userID string) ([]WeeklyTarget, error) {
	doc, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	currentWeek := clock.WeekID(s.clock.Now())
	reconciled := Reconcile(doc.Targets, doc.LastUpdateWeek, currentWeek, DefaultTargets())

	if doc.LastUpdateWeek != currentWeek || len(doc.Targets) == 0 {
		doc.LastUpdateWeek = currentWeek
		doc.Targets = reconciled
		if err := s.repo.Save(ctx, userID, doc); err != nil {
			return nil, err
		}
	}

	return reconciled, nil
}

// MatchCategories exposes the keyword matcher to collaborating
// packages without them importing the table directly.
func (s *Service) MatchCategories(mealText string) []string {
	return MatchCategories(mealText)
}

// ApplyToggleForUser adjusts the matched targets by delta and persists
// the result, stamped with the current week id.
func (s *Service) ApplyToggleForUser(ctx context.Context, userID string, matchedIDs []string, delta int) error {
	if len(matchedIDs) == 0 {
		return nil
	}

	targets, err := s.Targets(ctx, userID)
	if err != nil {
		return err
	}

	return s.repo.Save(ctx, userID, TargetsDocument{
		LastUpdateWeek: clock.WeekID(s.clock.Now()),
		Targets:        ApplyToggle(targets, matchedIDs, delta),
	})
}

// UpdateRanges replaces the name/min/max of stored targets, keeping
// the Current counts.
func (s *Service) UpdateRanges(ctx context.Context, userID string, updated []WeeklyTarget) ([]WeeklyTarget, error) {
	targets, err := s.Targets(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range targets {
		for _, u := range updated {
			if targets[i].ID != u.ID {
				continue
			}
			targets[i].Name = u.Name
			targets[i].Min = u.Min
			targets[i].Max = u.Max
			break
		}
	}

	if err := s.repo.Save(ctx, userID, TargetsDocument{
		LastUpdateWeek: clock.WeekID(s.clock.Now()),
		Targets:        targets,
	}); err != nil {
		return nil, err
	}

	return targets, nil
}

// Resync rebuilds all Current counts from the plan and consumption
// ledger, repairing any drift left by missed toggle events.
func (s *Service) Resync(ctx context.Context, userID string, plan diet.WeeklyDiet, ledger diet.ConsumptionLedger) ([]WeeklyTarget, error) {
	targets, err := s.Targets(ctx, userID)
	if err != nil {
		return nil, err
	}

	recomputed := RecomputeFromLedger(plan, ledger, targets)

	if err := s.repo.Save(ctx, userID, TargetsDocument{
		LastUpdateWeek: clock.WeekID(s.clock.Now()),
		Targets:        recomputed,
	}); err != nil {
		return nil, err
	}

	return recomputed, nil
}
