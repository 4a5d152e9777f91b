// Package apiutil holds the request helpers shared by the v1 controllers.
package apiutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"doclib/internal/contextutils"
	"doclib/internal/services"

	"github.com/gorilla/mux"
)

// Actor returns the authenticated caller, or nil for anonymous requests
func Actor(r *http.Request) *services.Actor {
	user := contextutils.GetUser(r.Context())
	if user == nil {
		return nil
	}
	return &services.Actor{UserID: user.ID, Name: user.Name, Role: user.Role}
}

// RequireActor is Actor for routes behind RequireAuth; the error branch
// only fires when a route is mounted without it.
func RequireActor(r *http.Request) (services.Actor, error) {
	actor := Actor(r)
	if actor == nil {
		return services.Actor{}, services.NewUnauthorizedError("Authentication required")
	}
	return *actor, nil
}

// PathID parses a positive int64 path variable
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.InvalidInputError(name, "must be a positive integer")
	}
	return id, nil
}

// PathString returns a raw path variable
func PathString(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// DecodeJSON decodes the body into dst and rejects unknown fields, trailing
// data and oversized bodies with a ValidationError.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return services.NewValidationError("Request body is required", nil)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return services.NewValidationError("Request body is too large", err)
		case errors.Is(err, io.EOF):
			return services.NewValidationError("Request body is required", err)
		default:
			return services.NewValidationError("Invalid request body", err)
		}
	}
	if dec.More() {
		return services.NewValidationError("Request body must contain a single JSON object", nil)
	}
	return nil
}

// QueryBool parses true/false/1/0 and falls back to def
func QueryBool(r *http.Request, name string, def bool) bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
