package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/irpartners/brokerage-api/pkg/logging"
)

func loginWith(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLoginSetsSessionCookie(t *testing.T) {
	svc, admins, _ := newTestService(t)
	seedAdmin(t, admins, "admin@irpartners.com", "hunter2secret")
	h := NewHandler(svc, false, logging.New("error"))

	rec := loginWith(t, h, `{"email":"admin@irpartners.com","password":"hunter2secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = %+v", cookie)
	}
	if cookie.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("cookie max-age = %d", cookie.MaxAge)
	}
}

func TestLoginRejectsMalformedInput(t *testing.T) {
	svc, admins, _ := newTestService(t)
	seedAdmin(t, admins, "admin@irpartners.com", "hunter2secret")
	h := NewHandler(svc, false, logging.New("error"))

	tests := []string{
		`{"email":"not-an-email","password":"hunter2secret"}`,
		`{"email":"admin@irpartners.com","password":"short"}`,
		`not json`,
	}
	for _, body := range tests {
		if rec := loginWith(t, h, body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %q status = %d, want 400", body, rec.Code)
		}
	}

	rec := loginWith(t, h, `{"email":"admin@irpartners.com","password":"wrongpass"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}
}

func TestRequireAdminWithCookie(t *testing.T) {
	svc, admins, _ := newTestService(t)
	seedAdmin(t, admins, "admin@irpartners.com", "hunter2secret")
	h := NewHandler(svc, false, logging.New("error"))

	rec := loginWith(t, h, `{"email":"admin@irpartners.com","password":"hunter2secret"}`)
	cookies := rec.Result().Cookies()

	protected := RequireAdmin(svc, "")(http.HandlerFunc(h.Me))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with cookie status = %d", rec.Code)
	}
	var me struct {
		Email string `json:"email"`
	}
	json.NewDecoder(rec.Body).Decode(&me)
	if me.Email != "admin@irpartners.com" {
		t.Errorf("me email = %q", me.Email)
	}

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without cookie status = %d, want 401", rec.Code)
	}
}

func TestRequireAdminWithBearerJWT(t *testing.T) {
	svc, admins, _ := newTestService(t)
	admin := seedAdmin(t, admins, "admin@irpartners.com", "hunter2secret")

	const secret = "test-jwt-secret"
	protected := RequireAdmin(svc, secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   admin.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("bearer status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage bearer status = %d, want 401", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	svc, admins, _ := newTestService(t)
	seedAdmin(t, admins, "admin@irpartners.com", "hunter2secret")
	h := NewHandler(svc, false, logging.New("error"))

	rec := loginWith(t, h, `{"email":"admin@irpartners.com","password":"hunter2secret"}`)
	cookies := rec.Result().Cookies()

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge != -1 {
			t.Errorf("cookie not cleared: %+v", c)
		}
	}

	protected := RequireAdmin(svc, "")(http.HandlerFunc(h.Me))
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("session still valid after logout: %d", rec.Code)
	}
}
