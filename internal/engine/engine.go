// Package engine provides the permission resolver: the single decision
// point for every (resource kind, action, principal) combination.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/softdesk-api/go-core/internal/membership"
	"github.com/softdesk-api/go-core/internal/metrics"
	"github.com/softdesk-api/go-core/internal/policy"
	"github.com/softdesk-api/go-core/internal/store"
	"github.com/softdesk-api/go-core/pkg/types"
)

// Engine resolves authorization decisions against the policy tables.
// It holds no cross-request mutable state: each Check allocates a
// fresh membership scope and discards it afterwards.
type Engine struct {
	policies policy.Set
	graph    store.Graph
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Option configures optional engine collaborators
type Option func(*Engine)

// WithMetrics attaches decision metrics to the engine
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger attaches a logger to the engine
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates a permission resolver over the given policy tables and
// resource graph
func New(policies policy.Set, graph store.Graph, opts ...Option) *Engine {
	e := &Engine{
		policies: policies,
		graph:    graph,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check resolves one authorization decision.
//
// Order of evaluation: authentication first, then resolution of the
// owning Project when the request references one (a missing Project is
// a NotFoundError, never a deny, and it applies to admins too), then
// the implicit admin override, then the policy entry's predicates
// left-to-right with short-circuit on the first satisfied one.
func (e *Engine) Check(ctx context.Context, req *types.CheckRequest) (*types.Decision, error) {
	start := time.Now()

	decision, err := e.check(ctx, req)

	effect := metrics.EffectError
	switch {
	case err != nil:
	case decision.Allowed:
		effect = metrics.EffectAllow
	default:
		effect = metrics.EffectDeny
	}
	e.metrics.ObserveDecision(string(req.Kind), string(req.Action), effect, time.Since(start))

	return decision, err
}

func (e *Engine) check(ctx context.Context, req *types.CheckRequest) (*types.Decision, error) {
	if !req.Principal.Authenticated() {
		return nil, ErrUnauthenticated
	}

	resourcePolicy, err := e.policies.For(req.Kind)
	if err != nil {
		return nil, err
	}

	scope := membership.NewScope(e.graph, req.Params)

	// The owning Project must exist before there is anything to
	// authorize against.
	if referencesProject(req) {
		if _, err := scope.Project(ctx); err != nil {
			return nil, err
		}
	}

	if req.Principal.IsAdmin {
		return types.Allow(), nil
	}

	predicates := resourcePolicy.For(req.Action)
	if len(predicates) == 0 {
		// No entry and no default: open to any authenticated principal.
		return types.Allow(), nil
	}

	for _, predicate := range predicates {
		ok, err := predicate.Eval(ctx, req.Principal, scope, req.Target)
		if err != nil {
			return nil, err
		}
		if ok {
			e.logger.Debug("authorization granted",
				zap.String("resource", string(req.Kind)),
				zap.String("action", string(req.Action)),
				zap.String("principal", req.Principal.ID),
				zap.String("predicate", predicate.Name),
			)
			return types.Allow(), nil
		}
	}

	e.logger.Debug("authorization denied",
		zap.String("resource", string(req.Kind)),
		zap.String("action", string(req.Action)),
		zap.String("principal", req.Principal.ID),
	)

	// Uniform message: never reveals which rule failed.
	return types.Deny(DeniedMessage), nil
}

// referencesProject reports whether the request names an owning
// Project that must exist before evaluation. Nested resources always
// do; the Project resource itself only for item-level actions.
func referencesProject(req *types.CheckRequest) bool {
	switch req.Kind {
	case types.KindContributor, types.KindIssue, types.KindComment:
		return true
	case types.KindProject:
		return req.Params.ProjectRef() != ""
	}
	return false
}
