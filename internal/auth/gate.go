package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/glossary-be/internal/config"
	"github.com/rs/zerolog/log"
)

type contextKey string

// IdentityKey is the context key for the admitted identity.
const IdentityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFromContext returns the identity attached by the gate, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}

// Gate decides whether a request may reach a protected handler. It holds no
// per-request state; mode and tokens are fixed when it is built.
type Gate struct {
	mode   config.AuthMode
	tokens *TokenService
}

// NewGate builds a Gate. In disabled mode tokens may be nil.
func NewGate(mode config.AuthMode, tokens *TokenService) *Gate {
	if mode != config.AuthDisabled {
		mode = config.AuthEnforcing
	}
	if mode == config.AuthDisabled {
		log.Warn().Msg("Authentication is turned off: every protected route is public")
	}
	return &Gate{mode: mode, tokens: tokens}
}

// Mode returns the gate's auth mode.
func (g *Gate) Mode() config.AuthMode {
	return g.mode
}

// Admit inspects a raw Authorization header value. Disabled gates admit
// everything as anonymous; enforcing gates need a valid "Bearer <token>".
func (g *Gate) Admit(authHeader string) (Identity, error) {
	if g.mode == config.AuthDisabled {
		return Identity{Anonymous: true}, nil
	}

	tokenStr, ok := bearerToken(authHeader)
	if !ok {
		return Identity{}, ErrMissingCredential
	}
	if g.tokens == nil {
		return Identity{}, ErrInvalidToken
	}
	return g.tokens.Verify(tokenStr)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Middleware protects the wrapped handler: 401 without a bearer credential,
// 403 for a token that does not verify.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Admit(r.Header.Get("Authorization"))
		if err != nil {
			status := http.StatusForbidden
			if errors.Is(err, ErrMissingCredential) {
				status = http.StatusUnauthorized
			}
			log.Warn().Err(err).Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("Request rejected by auth gate")
			writeError(w, status, http.StatusText(status))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
