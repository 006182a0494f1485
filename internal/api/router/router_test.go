package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/irpartners/brokerage-api/internal/auth"
	"github.com/irpartners/brokerage-api/internal/leads"
	"github.com/irpartners/brokerage-api/internal/properties"
	"github.com/irpartners/brokerage-api/internal/ratelimit"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

const testJWTSecret = "router-test-secret"

type testEnv struct {
	router  http.Handler
	leads   *leads.InMemoryRepository
	admins  *auth.InMemoryAdminRepository
	adminID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logging.New("error")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	admins := auth.NewInMemoryAdminRepository()
	hash, err := auth.HashPassword("hunter2secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := admins.Add(&auth.Admin{Email: "admin@irpartners.com", Name: "Admin", PasswordHash: hash})

	authService := auth.NewService(admins, auth.NewRedisSessionStore(client), time.Hour, logger)

	propsRepo := properties.NewInMemoryRepository()
	leadsRepo := leads.NewInMemoryRepository(propsRepo)

	limiter := ratelimit.New(ratelimit.NewMemoryStore(), time.Minute, 5, logger)

	cfg := &Config{
		Logger:            logger,
		LeadsHandler:      leads.NewHandler(leadsRepo, nil, nil, logger),
		PropertiesHandler: properties.NewHandler(propsRepo, nil, logger),
		AuthHandler:       auth.NewHandler(authService, false, logger),
		AuthService:       authService,
		SubmitLimiter:     limiter,
		AdminJWTSecret:    testJWTSecret,
	}

	return &testEnv{
		router:  New(cfg),
		leads:   leadsRepo,
		admins:  admins,
		adminID: admin.ID,
	}
}

func (e *testEnv) bearerToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   e.adminID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
}

func TestLeadSubmissionIsRateLimited(t *testing.T) {
	env := newTestEnv(t)

	payload, _ := json.Marshal(map[string]string{
		"name":    "Dana Whitfield",
		"email":   "dana@acmefreight.com",
		"message": "Looking for 50k SF with dock doors.",
	})

	submit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/leads/contact", bytes.NewReader(payload))
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 5; i++ {
		if rec := submit(); rec.Code != http.StatusOK {
			t.Fatalf("submission %d = %d, body = %s", i+1, rec.Code, rec.Body.String())
		}
	}
	if rec := submit(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("6th submission = %d, want 429", rec.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated admin = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer "+env.bearerToken(t))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer admin = %d", rec.Code)
	}
}

func TestCookieLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	body := bytes.NewReader([]byte(`{"email":"admin@irpartners.com","password":"hunter2secret"}`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, body = %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with cookie = %d", rec.Code)
	}
}

func TestPublicPropertiesRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("properties = %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Count != 0 {
		t.Errorf("count = %d", resp.Count)
	}

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/no-such-slug", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing slug = %d, want 404", rec.Code)
	}
}
