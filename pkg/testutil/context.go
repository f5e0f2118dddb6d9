package testutil

import (
	"net/http"
	"time"

	"homestay/pkg/domain"
	"homestay/pkg/requestcontext"
)

// WithActor places actor on the request context the way the auth middleware
// does for authenticated requests.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestTime pins the request clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
