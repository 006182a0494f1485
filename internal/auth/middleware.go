package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminContextKey contextKey = "admin"

// AdminFromContext returns the authenticated admin, if any.
func AdminFromContext(ctx context.Context) (*Admin, bool) {
	admin, ok := ctx.Value(adminContextKey).(*Admin)
	return admin, ok
}

// RequireAdmin guards admin routes. It accepts either the session cookie set
// by Login or, for API clients and automation, a Bearer HS256 JWT whose
// subject names an admin id.
func RequireAdmin(service *Service, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if admin := resolveCookie(r, service); admin != nil {
				next.ServeHTTP(w, r.WithContext(withAdmin(r.Context(), admin)))
				return
			}
			if admin := resolveBearer(r, service, jwtSecret); admin != nil {
				next.ServeHTTP(w, r.WithContext(withAdmin(r.Context(), admin)))
				return
			}
			writeError(w, http.StatusUnauthorized, "Authentication required")
		})
	}
}

func withAdmin(ctx context.Context, admin *Admin) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

func resolveCookie(r *http.Request, service *Service) *Admin {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	admin, err := service.Resolve(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return admin
}

func resolveBearer(r *http.Request, service *Service, secret string) *Admin {
	if secret == "" {
		return nil
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil
	}

	admin, err := service.admins.GetByID(r.Context(), claims.Subject)
	if err != nil {
		return nil
	}
	return admin
}
