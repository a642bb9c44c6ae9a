package api

import (
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/glossary-be/internal/api/handlers"
	"github.com/isdelr/glossary-be/internal/auth"
	ratelimit "github.com/isdelr/glossary-be/internal/middleware"
	"github.com/isdelr/glossary-be/internal/services"
	"github.com/isdelr/glossary-be/internal/websocket"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Access is the classification of a route.
type Access int

const (
	// Public routes are reachable without credentials.
	Public Access = iota
	// Protected routes pass through the auth gate first.
	Protected
)

func (a Access) String() string {
	if a == Protected {
		return "protected"
	}
	return "public"
}

// Route is one entry of the static route table.
type Route struct {
	Method  string
	Pattern string
	Access  Access
	// Throttled routes are rate limited per client address.
	Throttled bool
}

var routeTable = []Route{
	{Method: http.MethodGet, Pattern: "/", Access: Public},
	{Method: http.MethodGet, Pattern: "/api/status", Access: Public},

	{Method: http.MethodGet, Pattern: "/api/terms", Access: Public},
	{Method: http.MethodPost, Pattern: "/api/terms/term", Access: Public},
	{Method: http.MethodPost, Pattern: "/api/term/resources", Access: Public},
	{Method: http.MethodPost, Pattern: "/api/terms/add", Access: Protected},
	{Method: http.MethodPost, Pattern: "/api/terms/update", Access: Protected},
	{Method: http.MethodPost, Pattern: "/api/terms/delete", Access: Protected},
	{Method: http.MethodPost, Pattern: "/api/terms/resources/add", Access: Protected},
	{Method: http.MethodPost, Pattern: "/api/terms/resources/update", Access: Protected},
	{Method: http.MethodPost, Pattern: "/api/terms/resources/delete", Access: Protected},

	{Method: http.MethodPost, Pattern: "/api/contributor/login", Access: Public, Throttled: true},
	{Method: http.MethodPost, Pattern: "/api/newContributor", Access: Protected},
	{Method: http.MethodGet, Pattern: "/api/contributors", Access: Protected},
	{Method: http.MethodGet, Pattern: "/api/contributor/me", Access: Protected},

	{Method: http.MethodGet, Pattern: "/api/events", Access: Protected},

	{Method: http.MethodGet, Pattern: "/api/ws", Access: Public},
	{Method: http.MethodGet, Pattern: "/api/ws/terms/{id}", Access: Public},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	out := make([]Route, len(routeTable))
	copy(out, routeTable)
	return out
}

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Gate         *auth.Gate
	Hub          *websocket.Hub
	Auth         services.AuthServiceProvider
	Contributors services.ContributorServiceProvider
	Terms        services.TermServiceProvider
	Resources    services.ResourceServiceProvider
	Events       services.EventServiceProvider
	Stats        handlers.StatsSource

	// LoginLimiter throttles login attempts. Nil disables throttling.
	LoginLimiter    ratelimit.Limiter
	LoginRetryAfter time.Duration

	AllowedOrigins []string
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
	StartedAt      time.Time
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(ratelimit.RealIP(deps.TrustedProxies))
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlerFor := routeHandlers(deps)

	var throttle func(http.Handler) http.Handler
	if deps.LoginLimiter != nil {
		throttle = ratelimit.RateLimit(deps.LoginLimiter, deps.LoginRetryAfter)
	}

	for _, route := range routeTable {
		key := route.Method + " " + route.Pattern
		h, ok := handlerFor[key]
		if !ok {
			panic(fmt.Sprintf("api: no handler registered for %s", key))
		}

		var handler http.Handler = h
		if route.Access == Protected {
			handler = deps.Gate.Middleware(handler)
		}
		if route.Throttled && throttle != nil {
			handler = throttle(handler)
		}
		r.Method(route.Method, route.Pattern, handler)
	}

	return r
}

func routeHandlers(deps Dependencies) map[string]http.HandlerFunc {
	status := handlers.NewStatusHandler(deps.StartedAt, deps.Gate.Mode(), deps.Stats)
	terms := handlers.NewTermHandler(deps.Terms)
	resources := handlers.NewResourceHandler(deps.Resources)
	contributors := handlers.NewContributorHandler(deps.Auth, deps.Contributors)
	events := handlers.NewEventHandler(deps.Events)
	ws := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)

	return map[string]http.HandlerFunc{
		"GET /":           status.Banner,
		"GET /api/status": status.Status,

		"GET /api/terms":                   terms.GetAll,
		"POST /api/terms/term":             terms.Get,
		"POST /api/term/resources":         resources.GetForTerm,
		"POST /api/terms/add":              terms.Create,
		"POST /api/terms/update":           terms.Update,
		"POST /api/terms/delete":           terms.Delete,
		"POST /api/terms/resources/add":    resources.Create,
		"POST /api/terms/resources/update": resources.Update,
		"POST /api/terms/resources/delete": resources.Delete,

		"POST /api/contributor/login": contributors.Login,
		"POST /api/newContributor":    contributors.Register,
		"GET /api/contributors":       contributors.GetAll,
		"GET /api/contributor/me":     contributors.GetMe,

		"GET /api/events": events.GetRecent,

		"GET /api/ws":            ws.Serve,
		"GET /api/ws/terms/{id}": ws.Serve,
	}
}
