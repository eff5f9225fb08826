package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/telemetry/metrics"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

// gymScheduleSource provides the user's gym schedule for
// catalog resolution.
type gymScheduleSource interface {
	GymSchedule(ctx context.Context, userID string) (GymSchedule, error)
}

type AnswerRequest struct {
	QuestionID string `json:"questionId"`
	Yes        bool   `json:"yes"`
}

type RemindersResponse struct {
	Reminders []Reminder `json:"reminders"`
}

type Handler struct {
	machine     *Machine
	reminders   *Reminders
	gymSchedule gymScheduleSource
	userID      string
	metrics     *metrics.Manager
}

func NewHandler(
	machine *Machine,
	reminders *Reminders,
	gymSchedule gymScheduleSource,
	userID string,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		machine:     machine,
		reminders:   reminders,
		gymSchedule: gymSchedule,
		userID:      userID,
		metrics:     metrics,
	}
}

func (handler *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkin.state")
	defer span.End()

	state := handler.machine.Current(handler.gymScheduleOrDefault(ctx))

	stateJson, err := json.Marshal(state)
	if err != nil {
		log.Errorf("failed to marshal check-in state: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, stateJson, http.StatusOK)
}

func (handler *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkin.answer")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("check-in answer, unmarshal json params: %s", err)
		http.Error(w, "answer failed", http.StatusBadRequest)
		return
	}
	if req.QuestionID == "" {
		http.Error(w, "error, question id empty", http.StatusBadRequest)
		return
	}

	state, err := handler.machine.Answer(req.QuestionID, req.Yes, handler.gymScheduleOrDefault(ctx))
	switch {
	case errors.Is(err, ErrCommitting), errors.Is(err, ErrNotCurrent):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, ErrClosed):
		http.Error(w, err.Error(), http.StatusGone)
		return
	case err != nil:
		log.Errorf("failed to record check-in answer [%s]: %s", req.QuestionID, err)
		http.Error(w, "error, failed to record answer", http.StatusInternalServerError)
		return
	}

	answerLabel := "no"
	if req.Yes {
		answerLabel = "yes"
	}
	handler.metrics.CounterCheckInAnswers.WithLabelValues(answerLabel).Inc()

	stateJson, err := json.Marshal(state)
	if err != nil {
		log.Errorf("failed to marshal check-in state: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("check-in answer recorded: [%s] yes=%t", req.QuestionID, req.Yes)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, stateJson, http.StatusOK)
}

func (handler *Handler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkin.dismiss")
	defer span.End()

	state, err := handler.machine.Dismiss(handler.gymScheduleOrDefault(ctx))
	if errors.Is(err, ErrCommitting) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("failed to dismiss check-in: %s", err)
		http.Error(w, "error, failed to dismiss", http.StatusInternalServerError)
		return
	}

	stateJson, err := json.Marshal(state)
	if err != nil {
		log.Errorf("failed to marshal check-in state: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, stateJson, http.StatusOK)
}

func (handler *Handler) HandleReminders(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkin.reminders")
	defer span.End()

	due := handler.reminders.Due()
	if due == nil {
		due = []Reminder{}
	}

	remindersJson, err := json.Marshal(RemindersResponse{Reminders: due})
	if err != nil {
		log.Errorf("failed to marshal reminders: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, remindersJson, http.StatusOK)
}

// gymScheduleOrDefault falls back to an inactive schedule, so the
// check-in keeps working with meal and water questions only.
func (handler *Handler) gymScheduleOrDefault(ctx context.Context) GymSchedule {
	gym, err := handler.gymSchedule.GymSchedule(ctx, handler.userID)
	if err != nil {
		log.Warnf("failed to get gym schedule, using inactive default: %s", err)
		return GymSchedule{}
	}
	return gym
}
