package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opsdeck/sopgraph/pkg/cache"
	"github.com/opsdeck/sopgraph/pkg/store"
)

// Deps holds the collaborators of the API server.
type Deps struct {
	// Store persists procedures. Required.
	Store store.Store

	// Cache holds rendered artifacts. Defaults to the null cache.
	Cache cache.Cache

	// Keyer derives artifact cache keys. Defaults to the standard keyer.
	Keyer cache.Keyer

	// Logger receives request and render logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server is the procedure console API server.
type Server struct {
	deps Deps
}

// New creates a Server, filling optional dependencies with defaults.
func New(deps Deps) *Server {
	if deps.Cache == nil {
		deps.Cache = cache.NewNullCache()
	}
	if deps.Keyer == nil {
		deps.Keyer = cache.NewDefaultKeyer()
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Server{deps: deps}
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/procedures", func(r chi.Router) {
			r.Get("/", s.handleListProcedures)
			r.Get("/{id}", s.handleGetProcedure)
			r.Put("/{id}", s.handleSaveProcedure)
			r.Delete("/{id}", s.handleDeleteProcedure)
			r.Delete("/{id}/nodes/{node}", s.handleDeleteNode)
			r.Get("/{id}/render", s.handleRenderProcedure)
		})
		r.Post("/convert/graph", s.handleConvertGraph)
		r.Post("/convert/tree", s.handleConvertTree)
		r.Post("/layout", s.handleLayout)
		r.Post("/validate", s.handleValidate)
	})

	return r
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.deps.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
