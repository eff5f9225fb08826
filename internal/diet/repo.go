package diet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rosyfit/backend/internal/docstore"
)

const (
	collectionWeeks    = "diet_weeks"
	collectionProgress = "diet_progress"

	defaultWeekName = "Settimana Base"
)

var ErrWeekNotFound = errors.New("diet week not found")

// WeeksDocument holds all named diet weeks of a user plus the
// identifier of the one active for aggregation.
type WeeksDocument struct {
	ActiveWeek string                `json:"activeWeek"`
	Weeks      map[string]WeeklyDiet `json:"weeks"`
}

// Repo persists diet weeks and the consumption ledger as documents.
type Repo struct {
	store docstore.Store
}

func NewRepo(store docstore.Store) *Repo {
	return &Repo{store: store}
}

// GetWeeks returns the user's diet weeks document, seeding it with
// the default plan on first read.
func (r *Repo) GetWeeks(ctx context.Context, userID string) (WeeksDocument, error) {
	data, err := r.store.Get(ctx, collectionWeeks, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		doc := WeeksDocument{
			ActiveWeek: defaultWeekName,
			Weeks:      map[string]WeeklyDiet{defaultWeekName: DefaultPlan()},
		}
		if err := r.saveWeeksDoc(ctx, userID, doc); err != nil {
			return WeeksDocument{}, err
		}
		return doc, nil
	}
	if err != nil {
		return WeeksDocument{}, fmt.Errorf("get diet weeks: %w", err)
	}

	var doc WeeksDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return WeeksDocument{}, fmt.Errorf("unmarshal diet weeks: %w", err)
	}

	return doc, nil
}

// ActivePlan returns the diet week currently active for aggregation.
func (r *Repo) ActivePlan(ctx context.Context, userID string) (WeeklyDiet, error) {
	doc, err := r.GetWeeks(ctx, userID)
	if err != nil {
		return WeeklyDiet{}, err
	}

	plan, ok := doc.Weeks[doc.ActiveWeek]
	if !ok {
		return WeeklyDiet{}, ErrWeekNotFound
	}

	return plan, nil
}

// SaveWeek creates or replaces a named diet week.
func (r *Repo) SaveWeek(ctx context.Context, userID, name string, plan WeeklyDiet) error {
	doc, err := r.GetWeeks(ctx, userID)
	if err != nil {
		return err
	}

	plan.Name = name
	doc.Weeks[name] = plan
	if doc.ActiveWeek == "" {
		doc.ActiveWeek = name
	}

	return r.saveWeeksDoc(ctx, userID, doc)
}

// SetActiveWeek switches which named week drives aggregation.
func (r *Repo) SetActiveWeek(ctx context.Context, userID, name string) error {
	doc, err := r.GetWeeks(ctx, userID)
	if err != nil {
		return err
	}

	if _, ok := doc.Weeks[name]; !ok {
		return ErrWeekNotFound
	}
	doc.ActiveWeek = name

	return r.saveWeeksDoc(ctx, userID, doc)
}

// DeleteWeek removes a named week. The active week cannot be deleted.
func (r *Repo) DeleteWeek(ctx context.Context, userID, name string) error {
	doc, err := r.GetWeeks(ctx, userID)
	if err != nil {
		return err
	}

	if _, ok := doc.Weeks[name]; !ok {
		return ErrWeekNotFound
	}
	if doc.ActiveWeek == name {
		return fmt.Errorf("cannot delete the active week %q", name)
	}
	delete(doc.Weeks, name)

	return r.saveWeeksDoc(ctx, userID, doc)
}

// UpdateMeal replaces one meal entry of the active week.
func (r *Repo) UpdateMeal(ctx context.Context, userID, day, slot string, meal MealEntry) error {
	doc, err := r.GetWeeks(ctx, userID)
	if err != nil {
		return err
	}

	plan, ok := doc.Weeks[doc.ActiveWeek]
	if !ok {
		return ErrWeekNotFound
	}
	if plan.Days == nil {
		plan.Days = make(map[string]DayPlan)
	}
	if plan.Days[day] == nil {
		plan.Days[day] = make(DayPlan)
	}
	plan.Days[day][slot] = meal
	doc.Weeks[doc.ActiveWeek] = plan

	return r.saveWeeksDoc(ctx, userID, doc)
}

// GetConsumption returns the user's consumption ledger, empty when
// nothing was toggled yet.
func (r *Repo) GetConsumption(ctx context.Context, userID string) (ConsumptionLedger, error) {
	data, err := r.store.Get(ctx, collectionProgress, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return ConsumptionLedger{Days: make(map[string]map[string]SlotConsumption)}, nil
	}
	if err != nil {
		return ConsumptionLedger{}, fmt.Errorf("get consumption ledger: %w", err)
	}

	var ledger ConsumptionLedger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return ConsumptionLedger{}, fmt.Errorf("unmarshal consumption ledger: %w", err)
	}
	if ledger.Days == nil {
		ledger.Days = make(map[string]map[string]SlotConsumption)
	}

	return ledger, nil
}

// SaveConsumption persists the whole consumption ledger.
func (r *Repo) SaveConsumption(ctx context.Context, userID string, ledger ConsumptionLedger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal consumption ledger: %w", err)
	}
	if err := r.store.Set(ctx, collectionProgress, userID, data); err != nil {
		return fmt.Errorf("save consumption ledger: %w", err)
	}
	return nil
}

func (r *Repo) saveWeeksDoc(ctx context.Context, userID string, doc WeeksDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal diet weeks: %w", err)
	}
	if err := r.store.Set(ctx, collectionWeeks, userID, data); err != nil {
		return fmt.Errorf("save diet weeks: %w", err)
	}
	return nil
}
