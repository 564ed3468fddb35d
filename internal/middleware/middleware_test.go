package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func whoAmI(c *gin.Context) {
	actor, ok := ActorFrom(c)
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, string(actor.Role))
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), whoAmI)
	r.GET("/maybe", OptionalAuth(secret), whoAmI)
	r.GET("/admin", AuthMiddleware(secret), RequireRole(domain.RoleAdmin), whoAmI)

	exp := time.Now().Add(time.Hour).Unix()
	client := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7, "role": "client", "exp": exp})
	owner := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "3", "role": "owner", "exp": exp})
	expired := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7, "role": "client", "exp": time.Now().Add(-time.Hour).Unix()})
	wrongAlg := sign(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": 7, "role": "client", "exp": exp})
	noRole := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7, "exp": exp})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"client", "/me", "Bearer " + client, 200, "client"},
		{"legacy owner is admin", "/me", "Bearer " + owner, 200, "admin"},
		{"missing", "/me", "", 401, ""},
		{"not bearer", "/me", "Basic abc", 401, ""},
		{"expired", "/me", "Bearer " + expired, 401, ""},
		{"wrong alg", "/me", "Bearer " + wrongAlg, 401, ""},
		{"no role", "/me", "Bearer " + noRole, 401, ""},
		{"optional anonymous", "/maybe", "", 200, "anonymous"},
		{"optional identified", "/maybe", "Bearer " + client, 200, "client"},
		{"optional garbage", "/maybe", "Bearer nope", 401, ""},
		{"role denied", "/admin", "Bearer " + client, 403, ""},
		{"role allowed", "/admin", "Bearer " + owner, 200, "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(3)
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	now := start
	l.now = func() time.Time { return now }

	r := gin.New()
	r.Use(RateLimit(l, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if code := hit("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d = %d", i, code)
		}
	}
	if code := hit("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("4th request = %d, want 429", code)
	}
	if code := hit("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other ip = %d", code)
	}

	now = start.Add(20 * time.Second)
	if code := hit("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("after refill = %d", code)
	}

	now = start.Add(time.Hour)
	hit("10.0.0.3")
	if _, ok := l.visitors["10.0.0.1"]; ok {
		t.Fatal("idle visitor not collected")
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), CORSMiddleware([]string{"https://shop.example"}), Logger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("request id not propagated: %q", w.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if len(w.Header().Get(RequestIDHeader)) != 36 {
		t.Fatalf("generated id = %q", w.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "https://shop.example" {
		t.Fatalf("preflight = %d %v", w.Code, w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origin allowed")
	}
}
