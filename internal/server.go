package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/rosyfit/backend/internal/assistant"
	"github.com/rosyfit/backend/internal/auth"
	"github.com/rosyfit/backend/internal/checkin"
	"github.com/rosyfit/backend/internal/clock"
	"github.com/rosyfit/backend/internal/config"
	"github.com/rosyfit/backend/internal/db"
	"github.com/rosyfit/backend/internal/diet"
	"github.com/rosyfit/backend/internal/docstore"
	"github.com/rosyfit/backend/internal/goals"
	"github.com/rosyfit/backend/internal/mealfeed"
	"github.com/rosyfit/backend/internal/middleware"
	"github.com/rosyfit/backend/internal/profile"
	"github.com/rosyfit/backend/internal/shopping"
	"github.com/rosyfit/backend/internal/targets"
	"github.com/rosyfit/backend/internal/telemetry/metrics"
	"github.com/rosyfit/backend/internal/telemetry/tracing"
	"github.com/rosyfit/backend/pkg"
)

// delay between the answer request and the ledger commit, gives the
// client time to play the confirmation animation
const answerCommitDelay = 600 * time.Millisecond

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	credentials auth.Credentials

	dbPool           *pgxpool.Pool
	store            docstore.Store
	redisClient      *redis.Client
	loginChecker     *auth.LoginChecker
	authService      *auth.Service
	assistantService *assistant.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
}

type NewServerParams struct {
	Config         *config.Config
	VersionInfo    string
	Username       string
	PasswordHash   string
	RedisPassword  string
	GeminiAPIKey   string
	GeminiModel    string
	TracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("rosyfit", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	geminiClient, err := assistant.NewClient(ctx, params.GeminiAPIKey, params.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	assistantService := assistant.NewService(
		geminiClient,
		freecache.NewCache(10*1024*1024),
		metricsManager,
		clock.System{},
	)

	return &Server{
		config: params.Config,
		credentials: auth.Credentials{
			Username:     params.Username,
			PasswordHash: params.PasswordHash,
		},
		versionInfo: params.VersionInfo,

		dbPool:           dbPool,
		store:            docstore.NewPsqlStore(dbPool),
		redisClient:      rdb,
		authService:      authService,
		loginChecker:     auth.NewLoginChecker(auth.DefaultTTL, rdb),
		assistantService: assistantService,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("rosyfit-router"))

	userID := s.credentials.Username
	systemClock := clock.System{}

	profileRepo := profile.NewRepo(s.store)
	profileHandler := profile.NewHandler(profileRepo, userID)
	r.HandleFunc("/profile", profileHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", profileHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-profile")
	r.HandleFunc("/profile/gym", profileHandler.HandleGetGymSettings).Methods("GET", "OPTIONS").Name("get-gym-settings")
	r.HandleFunc("/profile/gym", profileHandler.HandleUpdateGymSettings).Methods("PUT", "OPTIONS").Name("update-gym-settings")

	checkinMachine := checkin.NewMachine(
		checkin.NewLedger(s.config.CheckInDataRootPath),
		systemClock,
		answerCommitDelay,
	)
	checkinHandler := checkin.NewHandler(
		checkinMachine,
		checkin.NewReminders(systemClock),
		profileRepo,
		userID,
		s.metricsManager,
	)
	r.HandleFunc("/checkin", checkinHandler.HandleGetState).Methods("GET", "OPTIONS").Name("checkin-state")
	r.HandleFunc("/checkin/answer", checkinHandler.HandleAnswer).Methods("POST", "OPTIONS").Name("checkin-answer")
	r.HandleFunc("/checkin/dismiss", checkinHandler.HandleDismiss).Methods("POST", "OPTIONS").Name("checkin-dismiss")
	r.HandleFunc("/checkin/reminders", checkinHandler.HandleReminders).Methods("GET", "OPTIONS").Name("checkin-reminders")

	targetsService := targets.NewService(targets.NewRepo(s.store), systemClock)
	dietRepo := diet.NewRepo(s.store)
	dietHandler := diet.NewHandler(dietRepo, targetsService, userID, s.metricsManager)
	r.HandleFunc("/diet/weeks", dietHandler.HandleGetWeeks).Methods("GET", "OPTIONS").Name("get-diet-weeks")
	r.HandleFunc("/diet/weeks/{name}", dietHandler.HandleSaveWeek).Methods("PUT", "OPTIONS").Name("save-diet-week")
	r.HandleFunc("/diet/weeks/{name}", dietHandler.HandleDeleteWeek).Methods("DELETE", "OPTIONS").Name("delete-diet-week")
	r.HandleFunc("/diet/weeks/{name}/activate", dietHandler.HandleActivateWeek).Methods("POST", "OPTIONS").Name("activate-diet-week")
	r.HandleFunc("/diet/meal", dietHandler.HandleUpdateMeal).Methods("PUT", "OPTIONS").Name("update-meal")
	r.HandleFunc("/diet/toggle", dietHandler.HandleToggleMeal).Methods("POST", "OPTIONS").Name("toggle-meal")
	r.HandleFunc("/diet/totals/{day}", dietHandler.HandleGetTotals).Methods("GET", "OPTIONS").Name("diet-totals")

	targetsHandler := targets.NewHandler(targetsService, dietRepo, userID)
	r.HandleFunc("/targets", targetsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-targets")
	r.HandleFunc("/targets", targetsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-targets")
	r.HandleFunc("/targets/resync", targetsHandler.HandleResync).Methods("POST", "OPTIONS").Name("resync-targets")

	goalsHandler := goals.NewHandler(goals.NewRepo(s.dbPool), profileRepo, systemClock, userID)
	r.HandleFunc("/weights", goalsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-weights")
	r.HandleFunc("/weights", goalsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-weight")
	r.HandleFunc("/weights/progress", goalsHandler.HandleProgress).Methods("GET", "OPTIONS").Name("weight-progress")
	r.HandleFunc("/weights/{id}", goalsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-weight")

	shoppingHandler := shopping.NewHandler(shopping.NewRepo(s.dbPool), dietRepo, userID)
	r.HandleFunc("/shopping", shoppingHandler.HandleList).Methods("GET", "OPTIONS").Name("list-shopping")
	r.HandleFunc("/shopping", shoppingHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-shopping-item")
	r.HandleFunc("/shopping/suggestions", shoppingHandler.HandleSuggestions).Methods("GET", "OPTIONS").Name("shopping-suggestions")
	r.HandleFunc("/shopping/{id}", shoppingHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-shopping-item")
	r.HandleFunc("/shopping/{id}", shoppingHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-shopping-item")

	mealfeedHandler := mealfeed.NewHandler(mealfeed.NewRepo(s.dbPool), s.assistantService, systemClock, userID)
	r.HandleFunc("/meals", mealfeedHandler.HandleList).Methods("GET", "OPTIONS").Name("list-meals")
	r.HandleFunc("/meals", mealfeedHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-meal")
	r.HandleFunc("/meals/{id}", mealfeedHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-meal")
	r.HandleFunc("/meals/{id}/analyze", mealfeedHandler.HandleAnalyze).Methods("POST", "OPTIONS").Name("analyze-meal")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	assistantHandler := assistant.NewHandler(s.assistantService)
	assistantRouter := r.PathPrefix("/assistant").Subrouter()
	assistantRouter.Use(middleware.RateLimit(
		reqRateLimiter,
		"assistant",
		s.config.AssistantRateLimitAllowedPerMin,
		s.metricsManager,
	))
	assistantRouter.HandleFunc("/recipe", assistantHandler.HandleRecipe).Methods("POST", "OPTIONS").Name("assistant-recipe")
	assistantRouter.HandleFunc("/offers", assistantHandler.HandleOffers).Methods("POST", "OPTIONS").Name("assistant-offers")
	assistantRouter.HandleFunc("/flyer", assistantHandler.HandleFlyer).Methods("POST", "OPTIONS").Name("assistant-flyer")
	assistantRouter.HandleFunc("/diet", assistantHandler.HandleGenerateDiet).Methods("POST", "OPTIONS").Name("assistant-diet")

	loginRateLimit := middleware.RateLimit(
		reqRateLimiter,
		"login",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	)
	r.Handle("/a/login", loginRateLimit(http.HandlerFunc(s.handleLogin))).Methods("POST", "OPTIONS").Name("login")
	r.HandleFunc("/a/logout", s.handleLogout).Methods("GET", "OPTIONS").Name("logout")

	r.HandleFunc("/", s.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	r.HandleFunc("/version", s.handleGetVersionInfo).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks")
}

func (s *Server) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.login")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var loginReq loginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}
	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "error, credentials empty", http.StatusBadRequest)
		return
	}

	if loginReq.Username != s.credentials.Username ||
		!pkg.CheckPasswordHash(loginReq.Password, s.credentials.PasswordHash) {
		log.Tracef("failed login attempt for user: %s", loginReq.Username)
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}

	token, err := s.authService.Login(ctx, time.Now())
	if err != nil {
		log.Errorf("login failed, create session: %s", err)
		http.Error(w, "create session error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token": "%s"}`, token))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.logout")
	defer span.End()

	if r.Method == "OPTIONS" {
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get("X-ROSYFIT-TOKEN")
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := s.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.assistantService != nil {
		if err := s.assistantService.Close(); err != nil {
			log.Errorf("failed to close assistant service: %s", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
