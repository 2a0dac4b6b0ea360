package policy

import (
	"fmt"

	"github.com/softdesk-api/go-core/pkg/types"
)

// entry associates a group of actions with one OR-list of predicates.
// Grouped keys exist only in the table source; normalization expands
// them into one flat mapping entry per single action.
type entry struct {
	actions    []types.Action
	predicates []Predicate
}

// ResourcePolicy is the flat, normalized policy for one resource kind:
// a mapping from single action to its OR-list of predicates, plus the
// default OR-list for actions with no explicit entry.
type ResourcePolicy struct {
	kind     types.ResourceKind
	entries  map[types.Action][]Predicate
	defaults []Predicate
}

// For returns the OR-list of predicates governing the action, falling
// back to the resource kind's default list. An empty list means the
// action is open to any authenticated principal; authentication itself
// and the admin override are enforced by the resolver, not here.
func (p *ResourcePolicy) For(action types.Action) []Predicate {
	if predicates, ok := p.entries[action]; ok {
		return predicates
	}
	return p.defaults
}

// Kind returns the resource kind this policy governs
func (p *ResourcePolicy) Kind() types.ResourceKind {
	return p.kind
}

// Set maps each resource kind to its normalized policy
type Set map[types.ResourceKind]*ResourcePolicy

// For returns the policy for a resource kind
func (s Set) For(kind types.ResourceKind) (*ResourcePolicy, error) {
	policy, ok := s[kind]
	if !ok {
		return nil, fmt.Errorf("no policy for resource kind %q", kind)
	}
	return policy, nil
}

// New builds the authoritative policy tables, normalized to one entry
// per single action. The grouped table source mirrors the rules:
//
//	Project:     retrieve -> Contributor; update/destroy -> ResourceAuthor;
//	             list/create -> any authenticated (default)
//	Contributor: create -> ProjectAuthor; destroy -> UserContributor or
//	             ProjectAuthor; default -> Contributor
//	Issue:       update -> ResourceAuthor; destroy -> ResourceAuthor or
//	             ProjectAuthor; default -> Contributor
//	Comment:     same as Issue
//	User:        every action -> any authenticated (default)
//
// The admin override is OR-ed into every decision by the resolver and
// is deliberately absent from the tables.
func New() (Set, error) {
	project, err := newResourcePolicy(types.KindProject,
		nil,
		entry{
			actions:    []types.Action{types.ActionRetrieve},
			predicates: []Predicate{IsProjectContributor},
		},
		entry{
			actions:    []types.Action{types.ActionUpdate, types.ActionPartialUpdate, types.ActionDestroy},
			predicates: []Predicate{IsResourceAuthor},
		},
	)
	if err != nil {
		return nil, err
	}

	contributor, err := newResourcePolicy(types.KindContributor,
		[]Predicate{IsProjectContributor},
		entry{
			actions:    []types.Action{types.ActionCreate},
			predicates: []Predicate{IsProjectAuthor},
		},
		entry{
			actions:    []types.Action{types.ActionDestroy},
			predicates: []Predicate{IsUserContributor, IsProjectAuthor},
		},
	)
	if err != nil {
		return nil, err
	}

	issue, err := newResourcePolicy(types.KindIssue,
		[]Predicate{IsProjectContributor},
		entry{
			actions:    []types.Action{types.ActionUpdate, types.ActionPartialUpdate},
			predicates: []Predicate{IsResourceAuthor},
		},
		entry{
			actions:    []types.Action{types.ActionDestroy},
			predicates: []Predicate{IsResourceAuthor, IsProjectAuthor},
		},
	)
	if err != nil {
		return nil, err
	}

	comment, err := newResourcePolicy(types.KindComment,
		[]Predicate{IsProjectContributor},
		entry{
			actions:    []types.Action{types.ActionUpdate, types.ActionPartialUpdate},
			predicates: []Predicate{IsResourceAuthor},
		},
		entry{
			actions:    []types.Action{types.ActionDestroy},
			predicates: []Predicate{IsResourceAuthor, IsProjectAuthor},
		},
	)
	if err != nil {
		return nil, err
	}

	user, err := newResourcePolicy(types.KindUser, nil)
	if err != nil {
		return nil, err
	}

	return Set{
		types.KindProject:     project,
		types.KindContributor: contributor,
		types.KindIssue:       issue,
		types.KindComment:     comment,
		types.KindUser:        user,
	}, nil
}

// newResourcePolicy normalizes grouped entries into a flat per-action
// mapping, rejecting unknown actions and duplicate keys at load time
func newResourcePolicy(kind types.ResourceKind, defaults []Predicate, entries ...entry) (*ResourcePolicy, error) {
	flat := make(map[types.Action][]Predicate)
	for _, e := range entries {
		for _, action := range e.actions {
			if !action.Valid() {
				return nil, fmt.Errorf("%s policy: unknown action %q", kind, action)
			}
			if _, dup := flat[action]; dup {
				return nil, fmt.Errorf("%s policy: duplicate entry for action %q", kind, action)
			}
			flat[action] = e.predicates
		}
	}

	return &ResourcePolicy{
		kind:     kind,
		entries:  flat,
		defaults: defaults,
	}, nil
}
