// Package auth authenticates bearer tokens and places the resulting actor on
// the request context.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"homestay/pkg/domain"
	request "homestay/pkg/platform/middleware/request"
	"homestay/pkg/requestcontext"
)

// JWTValidator validates a raw token and returns its claims.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker reports tokens withdrawn before they expired.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims is what the middleware needs from a validated token.
type JWTClaims struct {
	UserID   string
	Role     string
	District string
	JTI      string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// ActorFromClaims converts token claims into a domain actor. Officer roles
// must name a district.
func ActorFromClaims(claims *JWTClaims) (domain.Actor, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil || id == uuid.Nil {
		return domain.Actor{}, fmt.Errorf("invalid subject %q", claims.UserID)
	}
	role := domain.Role(claims.Role)
	if !role.IsValid() {
		return domain.Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	if role.IsOfficer() && claims.District == "" {
		return domain.Actor{}, fmt.Errorf("role %s requires a district", role)
	}
	return domain.Actor{ID: domain.UserID(id), Role: role, District: claims.District}, nil
}

// RequireAuth rejects requests without a valid bearer token. revocationChecker
// may be nil.
func RequireAuth(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if revocationChecker != nil && claims.JTI != "" {
				revoked, err := revocationChecker.IsTokenRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token")
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has been revoked")
					return
				}
			}

			actor, err := ActorFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - unusable claims",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

// RequireRole admits only actors holding one of roles. It must run after
// RequireAuth.
func RequireRole(logger *slog.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := requestcontext.Actor(ctx)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if !slices.Contains(roles, actor.Role) {
				logger.WarnContext(ctx, "forbidden - role not allowed",
					"role", actor.Role,
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "role not allowed for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
