// Package auth issues and checks the identity tokens instances present to
// the relay.
package auth

import (
	"context"
	"log"
	"net/http"
)

type claimsKey struct{}

// Middleware validates the token and stores the claims in the request
// context.
func Middleware(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := extractAndValidateToken(issuer, r, w)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// extractTokenFromRequest reads the Authorization header, falling back to
// the token query parameter for WebSocket clients.
func extractTokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return authHeader
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return "Bearer " + token
	}
	return ""
}

// extractAndValidateToken writes the error response itself when it fails.
func extractAndValidateToken(issuer *Issuer, r *http.Request, w http.ResponseWriter) (*Claims, bool) {
	tokenString, err := ExtractTokenFromHeader(extractTokenFromRequest(r))
	if err != nil {
		http.Error(w, "Unauthorized: Missing or malformed token", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := issuer.ValidateToken(tokenString)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}
