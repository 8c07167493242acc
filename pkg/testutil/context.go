package testutil

import (
	"net/http"
	"time"

	id "worktrack/pkg/domain"
	"worktrack/pkg/requestcontext"
)

// WithActor stamps the request context with an authenticated actor ID,
// simulating what the auth middleware does for a valid bearer token.
// Invalid IDs are silently ignored.
func WithActor(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
}

// WithFrozenTime pins the request-scoped clock so handlers compute
// deadline fields against a known instant.
func WithFrozenTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
