package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/diet"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

// dietSource provides the active weekly plan that suggestions are
// drawn from.
type dietSource interface {
	ActivePlan(ctx context.Context, userID string) (diet.WeeklyDiet, error)
}

type AddItemRequest struct {
	Name  string  `json:"name"`
	Qty   string  `json:"qty"`
	Price float64 `json:"price"`
}

// UpdateItemRequest carries only the fields the client wants changed.
type UpdateItemRequest struct {
	Name  *string  `json:"name,omitempty"`
	Done  *bool    `json:"done,omitempty"`
	Qty   *string  `json:"qty,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

type Handler struct {
	repo   itemsRepo
	diet   dietSource
	userID string
}

func NewHandler(repo itemsRepo, diet dietSource, userID string) *Handler {
	return &Handler{
		repo:   repo,
		diet:   diet,
		userID: userID,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.shopping.list")
	defer span.End()

	items, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("failed to list shopping items: %s", err)
		http.Error(w, "failed to list shopping items", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []Item{}
	}

	itemsJson, err := json.Marshal(items)
	if err != nil {
		log.Errorf("failed to marshal shopping items: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, itemsJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.shopping.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var addReq AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("add shopping item, unmarshal json params: %s", err)
		http.Error(w, "add shopping item failed", http.StatusBadRequest)
		return
	}

	name := CapitalizeName(addReq.Name)
	if name == "" {
		http.Error(w, "item name is required", http.StatusBadRequest)
		return
	}
	qty := strings.TrimSpace(addReq.Qty)
	if qty == "" {
		qty = "1"
	}

	item, err := handler.repo.Add(ctx, Item{
		Name:  name,
		Qty:   qty,
		Price: addReq.Price,
	})
	if err != nil {
		log.Errorf("failed to add shopping item: %s", err)
		http.Error(w, "error, failed to add shopping item", http.StatusInternalServerError)
		return
	}

	itemJson, err := json.Marshal(item)
	if err != nil {
		log.Errorf("failed to marshal shopping item: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, itemJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.shopping.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	var updateReq UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Tracef("update shopping item, unmarshal json params: %s", err)
		http.Error(w, "update shopping item failed", http.StatusBadRequest)
		return
	}

	item, err := handler.repo.Get(ctx, id)
	if err != nil {
		http.Error(w, "shopping item not found", http.StatusNotFound)
		return
	}

	if updateReq.Name != nil {
		item.Name = CapitalizeName(*updateReq.Name)
	}
	if updateReq.Done != nil {
		item.Done = *updateReq.Done
	}
	if updateReq.Qty != nil && *updateReq.Qty != item.Qty {
		// keep the price proportional to the new quantity unless the
		// client sent an explicit price too
		if updateReq.Price == nil {
			item.Price = RescalePrice(item.Price, item.Qty, *updateReq.Qty)
		}
		item.Qty = *updateReq.Qty
	}
	if updateReq.Price != nil {
		item.Price = *updateReq.Price
	}

	if err := handler.repo.Update(ctx, *item); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			http.Error(w, "shopping item not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update shopping item %d: %s", id, err)
		http.Error(w, "error, failed to update shopping item", http.StatusInternalServerError)
		return
	}

	itemJson, err := json.Marshal(item)
	if err != nil {
		log.Errorf("failed to marshal shopping item: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, itemJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.shopping.delete")
	defer span.End()

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			http.Error(w, "shopping item not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete shopping item %d: %s", id, err)
		http.Error(w, "error, failed to delete shopping item", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"deleted":true}`)
}

// HandleSuggestions returns ingredients of the active diet plan ranked
// by how many meals they appear in. An optional query of at least two
// characters narrows them by substring match.
func (handler *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.shopping.suggestions")
	defer span.End()

	plan, err := handler.diet.ActivePlan(ctx, handler.userID)
	if err != nil {
		log.Errorf("failed to get active diet plan: %s", err)
		http.Error(w, "failed to get diet plan", http.StatusInternalServerError)
		return
	}

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if len([]rune(query)) < 2 {
		query = ""
	}

	counts := map[string]int{}
	for _, day := range plan.Days {
		for _, meal := range day {
			for _, ingredient := range meal.Ingredients {
				name := CapitalizeName(ingredient.Item)
				if name == "" {
					continue
				}
				if query != "" && !strings.Contains(strings.ToLower(name), query) {
					continue
				}
				counts[name]++
			}
		}
	}

	suggestions := make([]Suggestion, 0, len(counts))
	for name, count := range counts {
		suggestions = append(suggestions, Suggestion{Name: name, Count: count})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Count != suggestions[j].Count {
			return suggestions[i].Count > suggestions[j].Count
		}
		return suggestions[i].Name < suggestions[j].Name
	})

	suggestionsJson, err := json.Marshal(suggestions)
	if err != nil {
		log.Errorf("failed to marshal suggestions: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, suggestionsJson, http.StatusOK)
}
