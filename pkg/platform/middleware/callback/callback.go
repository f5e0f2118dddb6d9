// Package callback authenticates server-to-server calls from the payment
// gateway, which present a shared secret instead of a user token.
package callback

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "homestay/pkg/platform/middleware/request"
)

const HeaderGatewayToken = "X-Gateway-Token"

// RequireGatewayToken admits requests whose X-Gateway-Token matches
// expected. An empty expected token rejects everything.
func RequireGatewayToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderGatewayToken)
			if expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "payment callback token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"gateway token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
