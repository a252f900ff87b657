package http

import (
	"context"
	"net/http"
	"strings"

	"bikerental-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "operator_claims"

// RoleOperator can run the rental desk; RoleManager can additionally change
// rental status by hand.
const (
	RoleOperator = "operator"
	RoleManager  = "manager"
)

// AuthMiddleware validates the bearer token and stashes the operator claims
// on the request context. Handlers read the tenant/site scope from the claims
// and pass it explicitly into every service call.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token", Kind: "unauthorized"})
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Kind: "unauthorized"})
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimsFrom(r *http.Request) (*security.OperatorClaims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*security.OperatorClaims)
	return claims, ok
}

// requireRole loads the claims and checks the role in one step; it writes the
// error response itself and returns nil when the request must not proceed.
func requireRole(w http.ResponseWriter, r *http.Request, role string) *security.OperatorClaims {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated", Kind: "unauthorized"})
		return nil
	}
	if !claims.HasRole(role) && !claims.HasRole(RoleManager) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "insufficient role", Kind: "forbidden"})
		return nil
	}
	return claims
}
