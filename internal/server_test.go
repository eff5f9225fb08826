package internal

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rosyfit/backend/internal/auth"
	"github.com/rosyfit/backend/internal/config"
	"github.com/rosyfit/backend/internal/docstore"
	"github.com/rosyfit/backend/internal/telemetry/metrics"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("testpass"), bcrypt.MinCost)
	require.NoError(t, err)

	rdb, _ := redismock.NewClientMock()

	return &Server{
		config: &config.Config{
			CheckInDataRootPath:             t.TempDir(),
			LoginRateLimitAllowedPerMin:     5,
			AssistantRateLimitAllowedPerMin: 10,
		},
		credentials: auth.Credentials{
			Username:     "rosy",
			PasswordHash: string(passwordHash),
		},
		versionInfo:    "test-version",
		store:          docstore.NewTestStore(),
		redisClient:    rdb,
		authService:    auth.NewService(auth.DefaultTTL, rdb),
		loginChecker:   auth.NewLoginChecker(auth.DefaultTTL, rdb),
		metricsManager: metrics.NewTestManager(),
	}
}

func TestServer_routerSetup(t *testing.T) {
	server := newTestServer(t)
	router := server.routerSetup()
	require.NotNil(t, router)

	registered := map[string]bool{}
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if name := route.GetName(); name != "" {
			registered[name] = true
		}
		return nil
	})
	require.NoError(t, err)

	for _, name := range []string{
		"root", "version", "login", "logout",
		"checkin-state", "checkin-answer", "checkin-dismiss", "checkin-reminders",
		"get-diet-weeks", "save-diet-week", "delete-diet-week", "activate-diet-week",
		"update-meal", "toggle-meal", "diet-totals",
		"get-targets", "update-targets", "resync-targets",
		"list-weights", "new-weight", "weight-progress", "remove-weight",
		"list-shopping", "new-shopping-item", "shopping-suggestions",
		"update-shopping-item", "remove-shopping-item",
		"list-meals", "new-meal", "remove-meal", "analyze-meal",
		"assistant-recipe", "assistant-offers", "assistant-flyer", "assistant-diet",
		"get-profile", "update-profile", "get-gym-settings", "update-gym-settings",
	} {
		assert.True(t, registered[name], "route [%s] not registered", name)
	}
}

func TestServer_rootAndVersion(t *testing.T) {
	server := newTestServer(t)
	router := server.routerSetup()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "test")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "I'm OK, thanks", rr.Body.String())

	req = httptest.NewRequest("GET", "/version", nil)
	req.Header.Set("Origin", "test")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "test-version", rr.Body.String())
}

func TestServer_handleLogin(t *testing.T) {
	rdb, rdbMock := redismock.NewClientMock()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("testpass"), bcrypt.MinCost)
	require.NoError(t, err)

	authService := auth.NewService(auth.DefaultTTL, rdb)
	authService.RandStringFunc = func(_ int) (string, error) {
		return "test-token", nil
	}

	server := &Server{
		credentials: auth.Credentials{
			Username:     "rosy",
			PasswordHash: string(passwordHash),
		},
		authService: authService,
	}

	rdbMock.Regexp().ExpectSet("rosyfit-session||test-token", `\d+`, 0).SetVal("OK")
	rdbMock.ExpectSAdd("rosyfit-sessions", "test-token").SetVal(1)

	req := httptest.NewRequest("POST", "/a/login", bytes.NewBufferString(
		`{"username": "rosy", "password": "testpass"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.handleLogin(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"token": "test-token"}`, rr.Body.String())
	assert.NoError(t, rdbMock.ExpectationsWereMet())

	// wrong password
	req = httptest.NewRequest("POST", "/a/login", bytes.NewBufferString(
		`{"username": "rosy", "password": "nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.handleLogin(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// wrong username
	req = httptest.NewRequest("POST", "/a/login", bytes.NewBufferString(`{"username": "nope", "password": "testpass"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.handleLogin(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// missing credentials
	req = httptest.NewRequest("POST", "/a/login", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.handleLogin(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
