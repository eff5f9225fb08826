package assistant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"

	"github.com/rosyfit/backend/internal/clock"
	"github.com/rosyfit/backend/internal/diet"
	"github.com/rosyfit/backend/internal/mealfeed"
	"github.com/rosyfit/backend/internal/telemetry/metrics"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
)

const (
	// FallbackRecipe is returned when the model is unreachable.
	FallbackRecipe = "Spiacente, non riesco a connettermi all'AI al momento."
	// FallbackOffers is returned when the offers search fails.
	FallbackOffers = "Il radar offerte web è momentaneamente offline. Prova a caricare un volantino PDF."
	// FallbackNoOffers is returned on an empty but successful search.
	FallbackNoOffers = "Nessuna offerta trovata tramite ricerca web."
	// FallbackFlyer is returned when the PDF analysis fails.
	FallbackFlyer = "Errore durante l'analisi del file PDF."

	recipeSystemInstruction = "Sei un assistente nutrizionista esperto di nome ROSYFIT. " +
		"Fornisci istruzioni di preparazione chiare e pulite. " +
		"IMPORTANTE: NON utilizzare simboli markdown come doppi asterischi (**) per il grassetto " +
		"o asterischi singoli (*) per gli elenchi. Per gli elenchi puntati usa solo il simbolo '•'. " +
		"Scrivi in modo testuale semplice senza alcun codice markdown. " +
		"Sii molto concisa e vai dritto al punto."

	recipeQuestion = "Dammi istruzioni rapide per cucinare questo pasto."

	recipeCacheTTLSeconds = 3600
)

var italianMonths = [12]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

var nutritionPattern = regexp.MustCompile(`(?i)CAL:\s*(\d+)\s*\|\s*CARBI:\s*(\d+)\s*\|\s*PRO:\s*(\d+)\s*\|\s*FATS:\s*(\d+)`)

// Service runs the Gemini-backed operations. Recipe advice is cached,
// recipe and offers calls retry transient model errors.
type Service struct {
	gen        generator
	cache      *freecache.Cache
	metrics    *metrics.Manager
	clock      clock.Clock
	retryDelay time.Duration
}

func NewService(gen generator, cache *freecache.Cache, m *metrics.Manager, c clock.Clock) *Service {
	return &Service{
		gen:        gen,
		cache:      cache,
		metrics:    m,
		clock:      c,
		retryDelay: 1500 * time.Millisecond,
	}
}

func (s *Service) Close() error {
	return s.gen.Close()
}

// withRetry reruns fn on transient model errors, twice at most, with
// a doubling pause in between.
func (s *Service) withRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	delay := s.retryDelay
	for attempt := 0; ; attempt++ {
		text, err := fn()
		if err == nil || !isRetryable(err) || attempt == 2 {
			return text, err
		}
		log.Warnf("assistant call failed, retrying in %s: %s", delay, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}
}

func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "Unavailable")
}

// RecipeAdvice asks for quick cooking instructions for one meal of
// the plan. Failures degrade to a fixed Italian message, never to an
// error.
func (s *Service) RecipeAdvice(ctx context.Context, day, slot, description string) string {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistant.recipe-advice")
	defer span.End()
	s.metrics.CounterAssistantCalls.WithLabelValues("recipe").Inc()

	cacheKey := []byte(fmt.Sprintf("recipe||%s||%s||%s", day, slot, description))
	if cached, err := s.cache.Get(cacheKey); err == nil {
		return string(cached)
	}

	mealContext := fmt.Sprintf("Pasto: %s del giorno %s. Descrizione: %s", slot, day, description)
	prompt := fmt.Sprintf("Diet Context: %s\n\nUser Question: %s", mealContext, recipeQuestion)

	advice, err := s.withRetry(ctx, func() (string, error) {
		return s.gen.Generate(ctx, recipeSystemInstruction, genai.Text(prompt))
	})
	if err != nil {
		log.Errorf("recipe advice failed: %s", err)
		s.metrics.CounterAssistantFailures.Inc()
		return FallbackRecipe
	}

	if err := s.cache.Set(cacheKey, []byte(advice), recipeCacheTTLSeconds); err != nil {
		log.Warnf("failed to cache recipe advice: %s", err)
	}

	return advice
}

// ShoppingOffers searches current supermarket offers for the given
// ingredients.
func (s *Service) ShoppingOffers(ctx context.Context, ingredients []string) string {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistant.shopping-offers")
	defer span.End()
	s.metrics.CounterAssistantCalls.WithLabelValues("offers").Inc()

	now := s.clock.Now()
	month := italianMonths[now.Month()-1]
	joined := strings.Join(ingredients, ", ")
	query := fmt.Sprintf(
		"Cerca i prezzi attuali e le offerte nel volantino di Eurospin, Lidl e Decò per %s %d per questi prodotti in Sicilia: %s",
		month, now.Year(), joined,
	)
	systemInstruction := fmt.Sprintf(
		"Sei l'assistente agli acquisti di ROSYFIT. "+
			"Trova offerte specifiche su: %s. "+
			"Rispondi con un elenco puntato usando solo '•'. "+
			"Formato: 'Nome Prodotto - Negozio - Prezzo/Offerta'. "+
			"NON usare markdown. Sii breve.",
		joined,
	)

	text, err := s.withRetry(ctx, func() (string, error) {
		return s.gen.Generate(ctx, systemInstruction, genai.Text(query))
	})
	if err != nil {
		log.Errorf("shopping offers failed: %s", err)
		s.metrics.CounterAssistantFailures.Inc()
		return FallbackOffers
	}
	if text == "" {
		return FallbackNoOffers
	}

	return text
}

// AnalyzeFlyerPDF scans an uploaded supermarket flyer for the given
// ingredients.
func (s *Service) AnalyzeFlyerPDF(ctx context.Context, pdfBase64 string, ingredients []string) string {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistant.analyze-flyer")
	defer span.End()
	s.metrics.CounterAssistantCalls.WithLabelValues("flyer").Inc()

	pdfData, err := base64.StdEncoding.DecodeString(pdfBase64)
	if err != nil {
		log.Errorf("invalid flyer pdf data: %s", err)
		s.metrics.CounterAssistantFailures.Inc()
		return FallbackFlyer
	}

	prompt := fmt.Sprintf(
		"Analizza questo volantino PDF. Cerca i prezzi migliori per questi prodotti: %s. "+
			"Dimmi quali sono in offerta e il loro prezzo. Sii molto sintetico. "+
			"Usa solo '•' per elenchi. Niente markdown.",
		strings.Join(ingredients, ", "),
	)

	text, err := s.gen.Generate(ctx, "",
		genai.Blob{MIMEType: "application/pdf", Data: pdfData},
		genai.Text(prompt),
	)
	if err != nil {
		log.Errorf("flyer analysis failed: %s", err)
		s.metrics.CounterAssistantFailures.Inc()
		return FallbackFlyer
	}

	return text
}

// AnalyzeMealNutrition estimates the macros of a photographed meal.
// The model answers in a fixed "CAL: n | CARBI: n | PRO: n | FATS: n"
// string contract.
func (s *Service) AnalyzeMealNutrition(ctx context.Context, imageBase64, description string) (mealfeed.Nutrition, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistant.analyze-meal")
	defer span.End()
	s.metrics.CounterAssistantCalls.WithLabelValues("nutrition").Inc()

	var parts []genai.Part
	if imageBase64 != "" {
		imageData, err := base64.StdEncoding.DecodeString(imageBase64)
		if err != nil {
			s.metrics.CounterAssistantFailures.Inc()
			return mealfeed.Nutrition{}, fmt.Errorf("invalid meal image data: %w", err)
		}
		parts = append(parts, genai.ImageData("jpeg", imageData))
	}

	descPart := ""
	if description != "" {
		descPart = fmt.Sprintf("(%s) ", description)
	}
	parts = append(parts, genai.Text(fmt.Sprintf(
		"Analizza questo pasto %s. Estrai calorie (Kcal), carboidrati (g), proteine (g) e grassi (g). "+
			"Rispondi SOLO in questo formato stringa semplice: "+
			"CAL: [numero] | CARBI: [numero] | PRO: [numero] | FATS: [numero]. "+
			"Non aggiungere altro testo.",
		descPart,
	)))

	text, err := s.gen.Generate(ctx, "", parts...)
	if err != nil {
		s.metrics.CounterAssistantFailures.Inc()
		return mealfeed.Nutrition{}, fmt.Errorf("meal analysis: %w", err)
	}

	nutrition, ok := ParseNutrition(text)
	if !ok {
		s.metrics.CounterAssistantFailures.Inc()
		return mealfeed.Nutrition{}, fmt.Errorf("unparsable meal analysis: %q", text)
	}

	return nutrition, nil
}

// ParseNutrition extracts the macros from the model's fixed string
// contract.
func ParseNutrition(text string) (mealfeed.Nutrition, bool) {
	match := nutritionPattern.FindStringSubmatch(text)
	if match == nil {
		return mealfeed.Nutrition{}, false
	}

	// the pattern guarantees digits only
	calories, _ := strconv.Atoi(match[1])
	carbs, _ := strconv.Atoi(match[2])
	protein, _ := strconv.Atoi(match[3])
	fats, _ := strconv.Atoi(match[4])

	return mealfeed.Nutrition{
		Calories: calories,
		Carbs:    carbs,
		Protein:  protein,
		Fats:     fats,
	}, true
}

// GenerateWeeklyDiet builds a complete named week from a free-form
// request, answering in the plan's JSON shape.
func (s *Service) GenerateWeeklyDiet(ctx context.Context, request string) (diet.WeeklyDiet, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistant.generate-diet")
	defer span.End()
	s.metrics.CounterAssistantCalls.WithLabelValues("diet").Inc()

	prompt := fmt.Sprintf(
		`Genera una settimana completa di dieta in base a questa richiesta: %s

Rispondi SOLO con un oggetto JSON valido, senza markdown e senza testo attorno, in questa forma:
{
  "name": "nome della settimana",
  "days": {
    "Lunedì": {
      "colazione": {"fullTitle": "...", "desc": "...", "kcal": 0, "carbs": 0, "protein": 0, "fats": 0},
      "spuntino": {...}, "pranzo": {...}, "spuntino2": {...}, "cena": {...}
    },
    "Martedì": {...}, "Mercoledì": {...}, "Giovedì": {...}, "Venerdì": {...}, "Sabato": {...}, "Domenica": {...}
  }
}`,
		request,
	)

	text, err := s.gen.Generate(ctx, "", genai.Text(prompt))
	if err != nil {
		s.metrics.CounterAssistantFailures.Inc()
		return diet.WeeklyDiet{}, fmt.Errorf("diet generation: %w", err)
	}

	jsonStr := extractJSON(text)
	if jsonStr == "" {
		s.metrics.CounterAssistantFailures.Inc()
		return diet.WeeklyDiet{}, fmt.Errorf("no valid JSON in diet generation response")
	}

	var week diet.WeeklyDiet
	if err := json.Unmarshal([]byte(jsonStr), &week); err != nil {
		s.metrics.CounterAssistantFailures.Inc()
		return diet.WeeklyDiet{}, fmt.Errorf("parse generated diet: %w", err)
	}
	if week.Name == "" || len(week.Days) == 0 {
		s.metrics.CounterAssistantFailures.Inc()
		return diet.WeeklyDiet{}, fmt.Errorf("incomplete generated diet")
	}

	return week, nil
}

// extractJSON pulls the outermost JSON object out of a response that
// may be wrapped in code fences or prose.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
