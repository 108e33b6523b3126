/**
 * @description
 * This package provides middleware for the HTTP server: authentication and
 * per-customer rate limiting. The auth middleware validates a JWT and puts
 * the customer and actor identities on the request context for the
 * handlers and the audit trail.
 *
 * @dependencies
 * - context, net/http, strings: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: JWT parsing and validation.
 */

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthContextKey is a custom type for the context keys to avoid collisions.
type AuthContextKey string

const (
	// CustomerIDKey is the key used to store the customer's ID in the request context.
	CustomerIDKey AuthContextKey = "customerID"
	// ActorKey is the key used to store the performing actor's identity in the request context.
	ActorKey AuthContextKey = "actor"
)

// AuthMiddleware creates a middleware that validates an HS256 JWT from the
// Authorization header and extracts the `customer_id` claim (required) and
// the `actor` claim (optional, recorded on audit entries).
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}
			customerID, _ := claims["customer_id"].(string)
			if customerID == "" {
				http.Error(w, "Token missing customer identity", http.StatusUnauthorized)
				return
			}
			actor, _ := claims["actor"].(string)

			ctx := context.WithValue(r.Context(), CustomerIDKey, customerID)
			ctx = context.WithValue(ctx, ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCustomerIDFromContext retrieves the authenticated customer ID from the
// request context. It returns an empty string if none is present.
func GetCustomerIDFromContext(ctx context.Context) string {
	customerID, ok := ctx.Value(CustomerIDKey).(string)
	if !ok {
		return ""
	}
	return customerID
}

// GetActorFromContext retrieves the performing actor from the request
// context. It returns an empty string if none is present.
func GetActorFromContext(ctx context.Context) string {
	actor, ok := ctx.Value(ActorKey).(string)
	if !ok {
		return ""
	}
	return actor
}
