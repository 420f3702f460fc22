package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/access"
	"github.com/linesmerrill/court-docket-api/models"
)

// Headers set by the authenticating gateway in front of this service
const (
	PrincipalIDHeader   = "X-Principal-ID"
	PrincipalRoleHeader = "X-Principal-Role"
)

type principalKey struct{}

// Middleware reads the authenticated principal from the gateway headers and
// puts it on the request context. Requests without one are rejected.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		p := access.Principal{
			ID:   r.Header.Get(PrincipalIDHeader),
			Role: models.Role(r.Header.Get(PrincipalRoleHeader)),
		}
		if p.ID == "" || !p.Role.Valid() {
			zap.S().Errorw("unauthorized",
				"url", r.URL,
				"role", p.Role)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p access.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal set by Middleware. The zero Principal
// is returned when none is present, which the access gate always refuses.
func PrincipalFrom(ctx context.Context) access.Principal {
	p, _ := ctx.Value(principalKey{}).(access.Principal)
	return p
}
