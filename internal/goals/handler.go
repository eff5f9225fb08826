package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/clock"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

// weightGoalSource yields the start and target weight from the
// profile without a hard dependency on that package.
type weightGoalSource interface {
	WeightGoal(ctx context.Context, userID string) (start, target float64, err error)
}

type AddWeightRequest struct {
	Value float64 `json:"value"`
}

type Handler struct {
	repo   weightsRepo
	goals  weightGoalSource
	clock  clock.Clock
	userID string
}

func NewHandler(repo weightsRepo, goals weightGoalSource, c clock.Clock, userID string) *Handler {
	return &Handler{
		repo:   repo,
		goals:  goals,
		clock:  c,
		userID: userID,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	entries, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list weight entries: %s", err)
		http.Error(w, "failed to list weight entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []WeightEntry{}
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("failed to marshal weight entries: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entriesJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var addReq AddWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("add weight, unmarshal json params: %s", err)
		http.Error(w, "add weight failed", http.StatusBadRequest)
		return
	}

	if addReq.Value <= 0 {
		http.Error(w, "invalid weight value", http.StatusBadRequest)
		return
	}

	entry, err := handler.repo.Add(ctx, addReq.Value, handler.clock.Now())
	if err != nil {
		log.Errorf("failed to add weight entry: %s", err)
		http.Error(w, "error, failed to add weight entry", http.StatusInternalServerError)
		return
	}

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal weight entry: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.delete")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid weight entry id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrWeightEntryNotFound) {
			http.Error(w, "weight entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete weight entry %d: %s", id, err)
		http.Error(w, "error, failed to delete weight entry", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"deleted":true}`)
}

// HandleProgress reports where the latest logged weight sits between
// the start and the target weight.
func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.progress")
	defer span.End()

	start, target, err := handler.goals.WeightGoal(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get weight goal: %s", err)
		http.Error(w, "failed to get weight goal", http.StatusInternalServerError)
		return
	}

	entries, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list weight entries: %s", err)
		http.Error(w, "failed to list weight entries", http.StatusInternalServerError)
		return
	}

	current := start
	if len(entries) > 0 {
		current = entries[len(entries)-1].Value
	}

	progressJson, err := json.Marshal(ComputeProgress(current, start, target))
	if err != nil {
		log.Errorf("failed to marshal progress: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, progressJson, http.StatusOK)
}
