package assistant

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

type RecipeRequest struct {
	Day         string `json:"day"`
	Slot        string `json:"slot"`
	Description string `json:"description"`
}

type RecipeResponse struct {
	Advice string `json:"advice"`
}

type OffersRequest struct {
	Ingredients []string `json:"ingredients"`
}

type OffersResponse struct {
	Text string `json:"text"`
}

type FlyerRequest struct {
	PDF         string   `json:"pdf"`
	Ingredients []string `json:"ingredients"`
}

type GenerateDietRequest struct {
	Request string `json:"request"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleRecipe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assistant.recipe")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var recipeReq RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&recipeReq); err != nil {
		log.Tracef("recipe advice, unmarshal json params: %s", err)
		http.Error(w, "recipe advice failed", http.StatusBadRequest)
		return
	}
	if recipeReq.Description == "" {
		http.Error(w, "meal description is required", http.StatusBadRequest)
		return
	}

	advice := handler.service.RecipeAdvice(ctx, recipeReq.Day, recipeReq.Slot, recipeReq.Description)

	responseJson, err := json.Marshal(RecipeResponse{Advice: advice})
	if err != nil {
		log.Errorf("failed to marshal recipe advice: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, responseJson, http.StatusOK)
}

func (handler *Handler) HandleOffers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assistant.offers")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var offersReq OffersRequest
	if err := json.NewDecoder(r.Body).Decode(&offersReq); err != nil {
		log.Tracef("shopping offers, unmarshal json params: %s", err)
		http.Error(w, "shopping offers failed", http.StatusBadRequest)
		return
	}
	if len(offersReq.Ingredients) == 0 {
		http.Error(w, "ingredients are required", http.StatusBadRequest)
		return
	}

	text := handler.service.ShoppingOffers(ctx, offersReq.Ingredients)

	responseJson, err := json.Marshal(OffersResponse{Text: text})
	if err != nil {
		log.Errorf("failed to marshal offers: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, responseJson, http.StatusOK)
}

func (handler *Handler) HandleFlyer(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assistant.flyer")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var flyerReq FlyerRequest
	if err := json.NewDecoder(r.Body).Decode(&flyerReq); err != nil {
		log.Tracef("flyer analysis, unmarshal json params: %s", err)
		http.Error(w, "flyer analysis failed", http.StatusBadRequest)
		return
	}
	if flyerReq.PDF == "" {
		http.Error(w, "flyer pdf is required", http.StatusBadRequest)
		return
	}

	text := handler.service.AnalyzeFlyerPDF(ctx, flyerReq.PDF, flyerReq.Ingredients)

	responseJson, err := json.Marshal(OffersResponse{Text: text})
	if err != nil {
		log.Errorf("failed to marshal flyer analysis: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, responseJson, http.StatusOK)
}

// HandleGenerateDiet returns a complete generated week. The client
// reviews it and saves it through the diet endpoints.
func (handler *Handler) HandleGenerateDiet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.assistant.generate-diet")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var generateReq GenerateDietRequest
	if err := json.NewDecoder(r.Body).Decode(&generateReq); err != nil {
		log.Tracef("diet generation, unmarshal json params: %s", err)
		http.Error(w, "diet generation failed", http.StatusBadRequest)
		return
	}
	if generateReq.Request == "" {
		http.Error(w, "diet request is required", http.StatusBadRequest)
		return
	}

	week, err := handler.service.GenerateWeeklyDiet(ctx, generateReq.Request)
	if err != nil {
		log.Errorf("failed to generate weekly diet: %s", err)
		http.Error(w, "failed to generate weekly diet", http.StatusBadGateway)
		return
	}

	weekJson, err := json.Marshal(week)
	if err != nil {
		log.Errorf("failed to marshal generated diet: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, weekJson, http.StatusOK)
}
