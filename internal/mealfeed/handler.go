package mealfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/clock"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

// nutritionAnalyzer estimates the macros of a meal from its photo and
// description.
type nutritionAnalyzer interface {
	AnalyzeMealNutrition(ctx context.Context, imageBase64, description string) (Nutrition, error)
}

type AddPostRequest struct {
	UserName    string `json:"userName"`
	Type        string `json:"type"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type ListResponse struct {
	Posts      []MealPost `json:"posts"`
	Categories []string   `json:"categories"`
}

type Handler struct {
	repo     postsRepo
	analyzer nutritionAnalyzer
	clock    clock.Clock
	userID   string
}

func NewHandler(repo postsRepo, analyzer nutritionAnalyzer, c clock.Clock, userID string) *Handler {
	return &Handler{
		repo:     repo,
		analyzer: analyzer,
		clock:    c,
		userID:   userID,
	}
}

// HandleList returns the feed newest first. Supported query params:
// view (personal or friends), category, period (today or 7days).
func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.mealfeed.list")
	defer span.End()

	posts, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list meal posts: %s", err)
		http.Error(w, "failed to list meal posts", http.StatusInternalServerError)
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "personal"
	}
	category := r.URL.Query().Get("category")
	period := r.URL.Query().Get("period")
	now := handler.clock.Now()

	filtered := make([]MealPost, 0, len(posts))
	for _, post := range posts {
		if view == "personal" && post.UserID != handler.userID {
			continue
		}
		if view == "friends" && post.UserID == handler.userID {
			continue
		}
		if category != "" && category != "Tutti" && post.Type != category {
			continue
		}
		switch period {
		case "today":
			y1, m1, d1 := post.CreatedAt.Year(), post.CreatedAt.Month(), post.CreatedAt.Day()
			y2, m2, d2 := now.Year(), now.Month(), now.Day()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		case "7days":
			if post.CreatedAt.Before(now.AddDate(0, 0, -7)) {
				continue
			}
		}
		filtered = append(filtered, post)
	}

	responseJson, err := json.Marshal(ListResponse{
		Posts:      filtered,
		Categories: Categories,
	})
	if err != nil {
		log.Errorf("failed to marshal meal posts: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, responseJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.mealfeed.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var addReq AddPostRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("add meal post, unmarshal json params: %s", err)
		http.Error(w, "add meal post failed", http.StatusBadRequest)
		return
	}

	if addReq.Image == "" {
		http.Error(w, "meal image is required", http.StatusBadRequest)
		return
	}

	userName := strings.TrimSpace(addReq.UserName)
	if userName == "" {
		userName = "Atleta"
	}
	description := strings.TrimSpace(addReq.Description)
	if description == "" {
		description = "Pasto senza descrizione"
	}
	postType := addReq.Type
	if !validCategory(postType) {
		postType = "Altro"
	}

	now := handler.clock.Now()
	post, err := handler.repo.Add(ctx, MealPost{
		UserID:      handler.userID,
		UserName:    userName,
		Type:        postType,
		Image:       addReq.Image,
		Time:        now.Format("15:04"),
		Description: description,
		CreatedAt:   now,
	})
	if err != nil {
		log.Errorf("failed to add meal post: %s", err)
		http.Error(w, "error, failed to add meal post", http.StatusInternalServerError)
		return
	}

	postJson, err := json.Marshal(post)
	if err != nil {
		log.Errorf("failed to marshal meal post: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, postJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.mealfeed.delete")
	defer span.End()

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid meal post id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id, handler.userID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.Error(w, "meal post not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete meal post %d: %s", id, err)
		http.Error(w, "error, failed to delete meal post", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"deleted":true}`)
}

// HandleAnalyze estimates the macros of a stored post and saves them
// on the post.
func (handler *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.mealfeed.analyze")
	defer span.End()

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid meal post id", http.StatusBadRequest)
		return
	}

	post, err := handler.repo.Get(ctx, id)
	if err != nil {
		http.Error(w, "meal post not found", http.StatusNotFound)
		return
	}

	// strip the data URL prefix, the model wants raw base64
	imageData := post.Image
	if idx := strings.Index(imageData, ","); idx >= 0 {
		imageData = imageData[idx+1:]
	}

	nutrition, err := handler.analyzer.AnalyzeMealNutrition(ctx, imageData, post.Description)
	if err != nil {
		log.Errorf("failed to analyze meal post %d: %s", id, err)
		http.Error(w, "failed to analyze meal", http.StatusBadGateway)
		return
	}

	if err := handler.repo.SetNutrition(ctx, id, nutrition); err != nil {
		log.Errorf("failed to store nutrition for meal post %d: %s", id, err)
		http.Error(w, "error, failed to store nutrition", http.StatusInternalServerError)
		return
	}

	nutritionJson, err := json.Marshal(nutrition)
	if err != nil {
		log.Errorf("failed to marshal nutrition: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, nutritionJson, http.StatusOK)
}
