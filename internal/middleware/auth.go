package middleware

import (
	"net/http"
	"strings"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/alerts"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/auth"
)

// RequireAuthMiddleware returns a mux-compatible middleware (func(http.Handler) http.Handler).
// Falhas de autenticação são transmitidas no bus de alertas (a console força
// novo login ao receber o evento); bus pode ser nil em testes.
func RequireAuthMiddleware(secret []byte, bus *alerts.Bus) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(secret, bus, next)
	}
}

func RequireAuth(secret []byte, bus *alerts.Bus, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r)
		if raw == "" {
			http.Error(w, `{"error":"missing or invalid authorization"}`, http.StatusUnauthorized)
			notifyUnauthorized(bus, "sessão ausente ou não autenticada")
			return
		}
		claims, err := auth.ParseJWT(secret, raw)
		if err != nil {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			notifyUnauthorized(bus, "sessão expirada ou token inválido, faça login novamente")
			return
		}
		r = r.WithContext(auth.WithClaims(r.Context(), claims))
		next.ServeHTTP(w, r)
	})
}

func notifyUnauthorized(bus *alerts.Bus, msg string) {
	if bus != nil {
		bus.Publish(alerts.SeverityWarning, msg)
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := auth.ClaimsFrom(r.Context())
			if c == nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if c.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(auth.RoleAdmin)(next)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
