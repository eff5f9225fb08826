package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rosyfit/backend/internal/middleware"
)

func TestCors(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	corsHandler := middleware.Cors()(nextHandler)

	testCases := []struct {
		name               string
		origin             string
		userAgent          string
		expectedStatusCode int
	}{
		{"allowed origin", "https://rosyfit.app", "", http.StatusOK},
		{"localhost dev", "http://localhost:5173", "", http.StatusOK},
		{"curl without origin", "", "curl/8.4.0", http.StatusOK},
		{"unknown origin", "https://evil.example.com", "", http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/diet", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.userAgent != "" {
				req.Header.Set("User-Agent", tc.userAgent)
			}
			rec := httptest.NewRecorder()

			corsHandler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedStatusCode == http.StatusOK && tc.origin != "" {
				assert.Equal(t, tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
