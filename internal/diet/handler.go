package diet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/telemetry/metrics"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

// targetUpdater applies consumed-toggle deltas to the weekly
// category targets.
type targetUpdater interface {
	MatchCategories(mealText string) []string
	ApplyToggleForUser(ctx context.Context, userID string, matchedIDs []string, delta int) error
}

type WeeksResponse struct {
	ActiveWeek string                `json:"activeWeek"`
	Weeks      map[string]WeeklyDiet `json:"weeks"`
}

type ToggleRequest struct {
	Day  string `json:"day"`
	Slot string `json:"slot"`
}

type ToggleResponse struct {
	Day      string `json:"day"`
	Slot     string `json:"slot"`
	Consumed bool   `json:"consumed"`
	Totals   Totals `json:"totals"`
}

type UpdateMealRequest struct {
	Day  string    `json:"day"`
	Slot string    `json:"slot"`
	Meal MealEntry `json:"meal"`
}

type Handler struct {
	repo    *Repo
	targets targetUpdater
	userID  string
	metrics *metrics.Manager
}

func NewHandler(repo *Repo, targets targetUpdater, userID string, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		targets: targets,
		userID:  userID,
		metrics: metrics,
	}
}

func (handler *Handler) HandleGetWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diet.weeks")
	defer span.End()

	doc, err := handler.repo.GetWeeks(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get diet weeks: %s", err)
		http.Error(w, "failed to get diet weeks", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(WeeksResponse{
		ActiveWeek: doc.ActiveWeek,
		Weeks:      doc.Weeks,
	})
	if err != nil {
		log.Errorf("failed to marshal diet weeks: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleSaveWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diet.save-week")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "error, week name empty", http.StatusBadRequest)
		return
	}

	var plan WeeklyDiet
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		log.Tracef("save diet week, unmarshal json params: %s", err)
		http.Error(w, "save week failed", http.StatusBadRequest)
		return
	}

	if err := handler.repo.SaveWeek(ctx, handler.userID, name, plan); err != nil {
		log.Errorf("failed to save diet week [%s]: %s", name, err)
		http.Error(w, "error, failed to save week", http.StatusInternalServerError)
		return
	}

	log.Debugf("diet week saved: [%s]", name)
	pkg.WriteJSONResponseOK(w, `{"saved":"`+name+`"}`)
}

func (handler *Handler) HandleActivateWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diet.activate-week")
	defer span.End()

	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "error, week name empty", http.StatusBadRequest)
		return
	}

	err := handler.repo.SetActiveWeek(ctx, handler.userID, name)
	if errors.Is(err, ErrWeekNotFound) {
		http.Error(w, "week not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to activate diet week [%s]: %s", name, err)
		http.Error(w, "error, failed to activate week", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"activeWeek":"`+name+`"}`)
}

func (handler *Handler) HandleDeleteWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diet.delete-week")
	defer span.End()

	name := mux.Vars(r)["name"]
	if name == "" {
		http.Error(w, "error, week name empty", http.StatusBadRequest)
		return
	}

	err := handler.repo.DeleteWeek(ctx, handler.userID, name)
	if errors.Is(err, ErrWeekNotFound) {
		http.Error(w, "week not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete diet week [%s]: %s", name, err)
		http.Error(w, "error, failed to delete week", http.StatusBadRequest)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"deleted":"`+name+`"}`)
}

func (handler *Handler) HandleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diet.update-meal")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req UpdateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update meal, unmarshal json params: %s", err)
		http.Error(w, "update meal failed", http.StatusBadRequest)
		return
	}
	if !validDay(req.Day) || !validSlot(req.Slot) {
		http.Error(w, "error, invalid day or slot", http.StatusBadRequest)
		return
	}

	// a meal edited through the ingredients editor gets its
	// description rebuilt from the ingredient list
	if len(req.Meal.Ingredients) > 0 {
		req.Meal.Desc = FormatIngredients(req.Meal.Ingredients)
	}

	if err := handler.repo.UpdateMeal(ctx, handler.userID, req.Day, req.Slot, req.Meal); err != nil {
		log.Errorf("failed to update meal [%s/%s]: %s", req.Day, req.Slot, err)
		http.Error(w, "error, failed to update meal", http.StatusInternalServerError)
		return
	}

	log.Debugf("meal updated: [%s/%s] %s", req.Day, req.Slot, req.Meal.FullTitle)
	pkg.WriteJSONResponseOK(w, `{"updated":true}`)
}

func (handler *Handler) HandleGetTotals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diet.totals")
	defer span.End()

	day := mux.Vars(r)["day"]
	if !validDay(day) {
		http.Error(w, "error, invalid day", http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.ActivePlan(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get active diet plan: %s", err)
		http.Error(w, "failed to get diet plan", http.StatusInternalServerError)
		return
	}
	ledger, err := handler.repo.GetConsumption(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get consumption ledger: %s", err)
		http.Error(w, "failed to get consumption", http.StatusInternalServerError)
		return
	}

	totalsJson, err := json.Marshal(Aggregate(plan, ledger, day))
	if err != nil {
		log.Errorf("failed to marshal totals: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, totalsJson, http.StatusOK)
}

func (handler *Handler) HandleToggleMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diet.toggle")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("toggle meal, unmarshal json params: %s", err)
		http.Error(w, "toggle failed", http.StatusBadRequest)
		return
	}
	if !validDay(req.Day) || !validSlot(req.Slot) {
		http.Error(w, "error, invalid day or slot", http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.ActivePlan(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get active diet plan: %s", err)
		http.Error(w, "failed to get diet plan", http.StatusInternalServerError)
		return
	}
	meal, ok := plan.Days[req.Day][req.Slot]
	if !ok {
		http.Error(w, "error, no meal planned for that slot", http.StatusNotFound)
		return
	}

	ledger, err := handler.repo.GetConsumption(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get consumption ledger: %s", err)
		http.Error(w, "failed to get consumption", http.StatusInternalServerError)
		return
	}

	if ledger.Days[req.Day] == nil {
		ledger.Days[req.Day] = make(map[string]SlotConsumption)
	}
	slotState := ledger.Days[req.Day][req.Slot]

	if slotState.Consumed {
		// toggle off, reusing the matched ids captured at toggle-on
		if err := handler.targets.ApplyToggleForUser(ctx, handler.userID, slotState.TargetIDs, -1); err != nil {
			log.Errorf("failed to apply target toggle: %s", err)
			http.Error(w, "failed to update targets", http.StatusInternalServerError)
			return
		}
		ledger.Days[req.Day][req.Slot] = SlotConsumption{Consumed: false}
	} else {
		matched := handler.targets.MatchCategories(meal.FullTitle + " " + meal.Desc)
		if err := handler.targets.ApplyToggleForUser(ctx, handler.userID, matched, 1); err != nil {
			log.Errorf("failed to apply target toggle: %s", err)
			http.Error(w, "failed to update targets", http.StatusInternalServerError)
			return
		}
		ledger.Days[req.Day][req.Slot] = SlotConsumption{Consumed: true, TargetIDs: matched}
	}

	if err := handler.repo.SaveConsumption(ctx, handler.userID, ledger); err != nil {
		log.Errorf("failed to save consumption ledger: %s", err)
		http.Error(w, "failed to save consumption", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterMealToggles.Inc()

	respJson, err := json.Marshal(ToggleResponse{
		Day:      req.Day,
		Slot:     req.Slot,
		Consumed: ledger.Days[req.Day][req.Slot].Consumed,
		Totals:   Aggregate(plan, ledger, req.Day),
	})
	if err != nil {
		log.Errorf("failed to marshal toggle response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func validDay(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

func validSlot(slot string) bool {
	for _, s := range SlotKeys {
		if s == slot {
			return true
		}
	}
	return false
}
