package profile

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

type Handler struct {
	repo   *Repo
	userID string
}

func NewHandler(repo *Repo, userID string) *Handler {
	return &Handler{
		repo:   repo,
		userID: userID,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	profile, err := handler.repo.Get(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get profile: %s", err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	profileJson, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("failed to marshal profile: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, profileJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var profile UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		log.Tracef("update profile, unmarshal json params: %s", err)
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}

	saved, err := handler.repo.Save(ctx, handler.userID, profile)
	if err != nil {
		log.Errorf("failed to save profile: %s", err)
		http.Error(w, "error, failed to save profile", http.StatusInternalServerError)
		return
	}

	savedJson, err := json.Marshal(saved)
	if err != nil {
		log.Errorf("failed to marshal profile: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, savedJson, http.StatusOK)
}

func (handler *Handler) HandleGetGymSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.gym-get")
	defer span.End()

	settings, err := handler.repo.GetGymSettings(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get gym settings: %s", err)
		http.Error(w, "failed to get gym settings", http.StatusInternalServerError)
		return
	}

	settingsJson, err := json.Marshal(settings)
	if err != nil {
		log.Errorf("failed to marshal gym settings: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, settingsJson, http.StatusOK)
}

func (handler *Handler) HandleUpdateGymSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.gym-update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var settings GymSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		log.Tracef("update gym settings, unmarshal json params: %s", err)
		http.Error(w, "update gym settings failed", http.StatusBadRequest)
		return
	}

	if err := handler.repo.SaveGymSettings(ctx, handler.userID, settings); err != nil {
		log.Errorf("failed to save gym settings: %s", err)
		http.Error(w, "error, failed to save gym settings", http.StatusInternalServerError)
		return
	}

	log.Debugf("gym settings updated: active=%t days=%v", settings.IsActive, settings.Days)
	pkg.WriteJSONResponseOK(w, `{"updated":true}`)
}
