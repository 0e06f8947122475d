package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"mercator-hq/rdl/pkg/config"
)

// APIKeyHeader is the alternative to an Authorization bearer token.
const APIKeyHeader = "X-API-Key"

var (
	errNoAPIKey       = errors.New("no API key")
	errInvalidAPIKey  = errors.New("invalid API key")
	errDisabledAPIKey = errors.New("API key disabled")
)

// keyValidator holds the accepted keys, indexed by secret.
type keyValidator struct {
	mu   sync.RWMutex
	keys map[string]config.APIKeyConfig
}

func newKeyValidator(keys []config.APIKeyConfig) *keyValidator {
	m := make(map[string]config.APIKeyConfig, len(keys))
	for _, k := range keys {
		m[k.Key] = k
	}
	return &keyValidator{keys: m}
}

// validate returns the client name for key.
func (v *keyValidator) validate(key string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	k, ok := v.keys[key]
	if !ok {
		return "", errInvalidAPIKey
	}
	if k.Disabled {
		return "", errDisabledAPIKey
	}
	return k.Name, nil
}

type clientKey struct{}

// Client returns the name of the API key that authenticated the request,
// or "" when authentication is off.
func Client(ctx context.Context) string {
	name, _ := ctx.Value(clientKey{}).(string)
	return name
}

func extractAPIKey(r *http.Request) (string, error) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if key, ok := strings.CutPrefix(auth, "Bearer "); ok && key != "" {
			return key, nil
		}
	}
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, nil
	}
	return "", errNoAPIKey
}

// authMiddleware rejects requests without a valid, enabled key.
func authMiddleware(v *keyValidator, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := extractAPIKey(r)
		if err == nil {
			var name string
			if name, err = v.validate(key); err == nil {
				logger.DebugContext(r.Context(), "API key authenticated", "client", name, "path", r.URL.Path)
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, name)))
				return
			}
		}

		logger.WarnContext(r.Context(), "request rejected",
			"error", err,
			"remote_addr", r.RemoteAddr,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
		)
		w.Header().Set("WWW-Authenticate", `Bearer realm="rdl"`)
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	})
}
