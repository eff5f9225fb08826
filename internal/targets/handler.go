package targets

import (
	"context"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/diet"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

// dietSource supplies the ground truth for a full resync.
type dietSource interface {
	ActivePlan(ctx context.Context, userID string) (diet.WeeklyDiet, error)
	GetConsumption(ctx context.Context, userID string) (diet.ConsumptionLedger, error)
}

type TargetsResponse struct {
	Targets []WeeklyTarget `json:"targets"`
}

type Handler struct {
	service *Service
	diet    dietSource
	userID  string
}

func NewHandler(service *Service, diet dietSource, userID string) *Handler {
	return &Handler{
		service: service,
		diet:    diet,
		userID:  userID,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.targets.get")
	defer span.End()

	targets, err := handler.service.Targets(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get weekly targets: %s", err)
		http.Error(w, "failed to get targets", http.StatusInternalServerError)
		return
	}

	handler.writeTargets(w, targets)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.targets.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req TargetsResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update targets, unmarshal json params: %s", err)
		http.Error(w, "update targets failed", http.StatusBadRequest)
		return
	}
	if len(req.Targets) == 0 {
		http.Error(w, "error, targets empty", http.StatusBadRequest)
		return
	}

	targets, err := handler.service.UpdateRanges(ctx, handler.userID, req.Targets)
	if err != nil {
		log.Errorf("failed to update weekly targets: %s", err)
		http.Error(w, "failed to update targets", http.StatusInternalServerError)
		return
	}

	handler.writeTargets(w, targets)
}

func (handler *Handler) HandleResync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.targets.resync")
	defer span.End()

	plan, err := handler.diet.ActivePlan(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get active diet plan for resync: %s", err)
		http.Error(w, "failed to resync targets", http.StatusInternalServerError)
		return
	}
	ledger, err := handler.diet.GetConsumption(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get consumption ledger for resync: %s", err)
		http.Error(w, "failed to resync targets", http.StatusInternalServerError)
		return
	}

	targets, err := handler.service.Resync(ctx, handler.userID, plan, ledger)
	if err != nil {
		log.Errorf("failed to resync weekly targets: %s", err)
		http.Error(w, "failed to resync targets", http.StatusInternalServerError)
		return
	}

	log.Debugf("weekly targets resynced for user %s", handler.userID)
	handler.writeTargets(w, targets)
}

func (handler *Handler) writeTargets(w http.ResponseWriter, targets []WeeklyTarget) {
	respJson, err := json.Marshal(TargetsResponse{Targets: targets})
	if err != nil {
		log.Errorf("failed to marshal targets: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
