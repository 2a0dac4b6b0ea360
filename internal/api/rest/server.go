package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/softdesk-api/go-core/internal/auth"
	"github.com/softdesk-api/go-core/internal/engine"
	"github.com/softdesk-api/go-core/internal/store"
	"github.com/softdesk-api/go-core/pkg/types"
)

// Server is the REST API server
type Server struct {
	engine     *engine.Engine
	store      store.Store
	validator  *auth.JWTValidator
	router     *mux.Router
	httpServer *http.Server
	logger     *zap.Logger
	config     Config
}

// Config configures the REST API server
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	EnableCORS   bool

	// MetricsRegistry, when set, exposes Prometheus metrics on /metrics
	MetricsRegistry *prometheus.Registry
}

// DefaultConfig returns default REST server configuration
func DefaultConfig() Config {
	return Config{
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		EnableCORS:   true,
	}
}

// New creates a new REST API server
func New(cfg Config, eng *engine.Engine, st store.Store, validator *auth.JWTValidator, logger *zap.Logger) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("token validator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		engine:    eng,
		store:     st,
		validator: validator,
		router:    mux.NewRouter(),
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// registerRoutes registers all REST API routes
func (s *Server) registerRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	s.router.HandleFunc("/health", s.healthCheckHandler).Methods("GET")
	if s.config.MetricsRegistry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.config.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.Use(s.authMiddleware)

	// Users: registration is open, the rest requires authentication
	v1.HandleFunc("/users", s.registerUserHandler).Methods("POST")
	v1.HandleFunc("/users", s.listUsersHandler).Methods("GET")
	v1.HandleFunc("/users/{pk}", s.getUserHandler).Methods("GET")

	// Projects
	v1.HandleFunc("/projects", s.listProjectsHandler).Methods("GET")
	v1.HandleFunc("/projects", s.createProjectHandler).Methods("POST")
	v1.HandleFunc("/projects/{pk}", s.getProjectHandler).Methods("GET")
	v1.HandleFunc("/projects/{pk}", s.updateProjectHandler).Methods("PUT", "PATCH")
	v1.HandleFunc("/projects/{pk}", s.deleteProjectHandler).Methods("DELETE")

	// Contributors: not editable, so no PUT/PATCH routes
	contributors := v1.PathPrefix("/projects/{project_pk}/contributors").Subrouter()
	contributors.HandleFunc("", s.listContributorsHandler).Methods("GET")
	contributors.HandleFunc("", s.addContributorHandler).Methods("POST")
	contributors.HandleFunc("/{pk}", s.getContributorHandler).Methods("GET")
	contributors.HandleFunc("/{pk}", s.removeContributorHandler).Methods("DELETE")

	// Issues
	issues := v1.PathPrefix("/projects/{project_pk}/issues").Subrouter()
	issues.HandleFunc("", s.listIssuesHandler).Methods("GET")
	issues.HandleFunc("", s.createIssueHandler).Methods("POST")
	issues.HandleFunc("/{pk}", s.getIssueHandler).Methods("GET")
	issues.HandleFunc("/{pk}", s.updateIssueHandler).Methods("PUT", "PATCH")
	issues.HandleFunc("/{pk}", s.deleteIssueHandler).Methods("DELETE")

	// Comments
	comments := v1.PathPrefix("/projects/{project_pk}/issues/{issue_pk}/comments").Subrouter()
	comments.HandleFunc("", s.listCommentsHandler).Methods("GET")
	comments.HandleFunc("", s.createCommentHandler).Methods("POST")
	comments.HandleFunc("/{pk}", s.getCommentHandler).Methods("GET")
	comments.HandleFunc("/{pk}", s.updateCommentHandler).Methods("PUT", "PATCH")
	comments.HandleFunc("/{pk}", s.deleteCommentHandler).Methods("DELETE")
}

// Start starts the REST API server
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server",
		zap.Int("port", s.config.Port),
		zap.Bool("cors_enabled", s.config.EnableCORS),
	)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the REST API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// authorize runs one authorization check and writes the failure
// response itself. It returns true when the request may proceed.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, kind types.ResourceKind, action types.Action, target types.Target) bool {
	req := &types.CheckRequest{
		Principal: PrincipalFrom(r.Context()),
		Kind:      kind,
		Action:    action,
		Params:    pathParams(mux.Vars(r)),
		Target:    target,
	}

	decision, err := s.engine.Check(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return false
	}
	if !decision.Allowed {
		WriteError(w, http.StatusForbidden, decision.Message)
		return false
	}
	return true
}

// requirePrincipal rejects unauthenticated requests before a handler
// touches the store, so an anonymous caller never learns whether a
// resource exists. The engine re-checks; this only moves the 401
// ahead of the target lookup.
func (s *Server) requirePrincipal(w http.ResponseWriter, r *http.Request) bool {
	if PrincipalFrom(r.Context()) == nil {
		s.writeDomainError(w, engine.ErrUnauthenticated)
		return false
	}
	return true
}

// writeDomainError maps engine and store failures to status codes:
// unauthenticated 401, missing resource 404, uniqueness conflict 409
// with its resource-specific message, author-removal 400.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var notFound *store.NotFoundError
	var conflict *store.ConflictError

	switch {
	case errors.Is(err, engine.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
	case errors.As(err, &notFound):
		WriteError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		WriteError(w, http.StatusConflict, conflict.Message)
	case errors.Is(err, store.ErrAuthorContributor):
		WriteError(w, http.StatusBadRequest, "The project author cannot be removed from the contributors.")
	default:
		s.logger.Error("Request failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// healthCheckHandler handles health check requests
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// actionForMethod maps PUT to a full update and PATCH to a partial one
func actionForMethod(r *http.Request) types.Action {
	if r.Method == http.MethodPatch {
		return types.ActionPartialUpdate
	}
	return types.ActionUpdate
}
