package resolve

import (
	"fmt"
	"sort"

	"github.com/jxskiss/traefik-migrate/pkg/model"
)

// PriorityStep spaces assigned priorities so operators can slot manual
// routes between generated ones without renumbering.
const PriorityStep = 5

// AmbiguousRouteConflictError is the only fatal resolution failure: two
// candidate routes from different backends claim identical traffic with
// no legitimate tie-break. Producing output with an undefined winner
// risks silently misrouting production traffic, so the run aborts with
// no partial output.
type AmbiguousRouteConflictError struct {
	Route    string
	Other    string
	Host     string
	Path     string
	Backends [2]string
}

func (e *AmbiguousRouteConflictError) Error() string {
	return fmt.Sprintf("ambiguous route conflict: %q and %q both claim host %q path %q with backends %s and %s",
		e.Route, e.Other, e.Host, e.Path, e.Backends[0], e.Backends[1])
}

// Resolve decides, per legacy rule, whether the legacy route can be
// retired or must be retained as fallback, synthesizes residual routes
// for uncovered entries, and assigns the global priority order. It
// requires the complete candidate and legacy collections: coverage is a
// global decision, a late candidate can flip an earlier verdict.
func Resolve(legacy []model.LegacyRule, candidates []model.CandidateRoute) (*model.ResolvedRouteSet, error) {
	if err := detectConflicts(candidates); err != nil {
		return nil, err
	}

	arena := make([]model.CandidateRoute, len(candidates))
	copy(arena, candidates)

	plan := model.FallbackPlan{}
	// Residuals get their own declaration order, a single counter over
	// (rule, entry) in legacy declaration order.
	residualOrder := 0
	for _, rule := range legacy {
		entry, residuals := coverRule(rule, candidates, &residualOrder)
		plan.Entries = append(plan.Entries, entry)
		arena = append(arena, residuals...)
	}

	assignPriorities(arena)

	// Emit order: host, then path, then priority.
	sort.SliceStable(arena, func(i, j int) bool {
		a, b := &arena[i], &arena[j]
		if a.Host.Pattern != b.Host.Pattern {
			return a.Host.Pattern < b.Host.Pattern
		}
		if a.Path.Value != b.Path.Value {
			return a.Path.Value < b.Path.Value
		}
		return a.Priority < b.Priority
	})

	return &model.ResolvedRouteSet{Routes: arena, Plan: plan}, nil
}

// detectConflicts fails on candidates whose derived names collide while
// pointing at different backends. Names are pure functions of (source,
// host, path), so a collision means duplicate source objects claiming
// the same traffic for different services: there is no declaration-order
// tie-break to trust, and guessing is worse than failing.
func detectConflicts(candidates []model.CandidateRoute) error {
	byName := make(map[string]*model.CandidateRoute, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		prev, ok := byName[c.Name]
		if !ok {
			byName[c.Name] = c
			continue
		}
		if !prev.Backend.Equal(c.Backend) {
			return &AmbiguousRouteConflictError{
				Route:    prev.Name,
				Other:    c.Name,
				Host:     c.Host.Pattern,
				Path:     c.Path.Value,
				Backends: [2]string{prev.Backend.String(), c.Backend.String()},
			}
		}
	}
	return nil
}

// coverRule computes the coverage verdict for one legacy rule and
// synthesizes residual routes for its uncovered entries. A residual
// reproduces the uncovered behavior exactly and lands in the low
// priority band, so it only activates when no translated route matches.
func coverRule(rule model.LegacyRule, candidates []model.CandidateRoute, residualOrder *int) (model.PlanEntry, []model.CandidateRoute) {
	entry := model.PlanEntry{Source: rule.Source}
	if rule.Opaque {
		entry.FallbackRetained = true
		return entry, nil
	}

	var residuals []model.CandidateRoute
	covering := make(map[string]bool)
	allCovered := true
	for _, le := range rule.Entries {
		found := false
		for ci := range candidates {
			if candidates[ci].Covers(le) {
				found = true
				if !covering[candidates[ci].Name] {
					covering[candidates[ci].Name] = true
					entry.CoveringRoutes = append(entry.CoveringRoutes, candidates[ci].Name)
				}
			}
		}
		if found {
			continue
		}
		allCovered = false
		residuals = append(residuals, residualRoute(rule, le, *residualOrder))
		*residualOrder++
	}

	entry.Covered = allCovered
	entry.FallbackRetained = !allCovered
	return entry, residuals
}

func residualRoute(rule model.LegacyRule, le model.LegacyEntry, order int) model.CandidateRoute {
	name := model.Slug("fallback", rule.Source.Namespace, rule.Source.Name,
		le.Host.Pattern, le.Path.Kind.String(), le.Path.Value)
	var mws []model.MiddlewareObject
	for _, mw := range le.Middlewares {
		mws = append(mws, model.MiddlewareObject{
			Name: model.Slug("fallback", rule.Source.Namespace, rule.Source.Name,
				string(mw.Kind)),
			Middleware: mw,
		})
	}
	return model.CandidateRoute{
		Name:        name,
		Source:      rule.Source,
		Host:        le.Host,
		Path:        le.Path,
		Backend:     le.Backend,
		Middlewares: mws,
		Weight:      1,
		Order:       order,
		Residual:    true,
	}
}

// assignPriorities computes the explicit total order over the whole
// route arena in one pass: residuals sit strictly below every translated
// route, specificity decides within a band, weight and declaration order
// break ties (first-declared wins). Priorities are a pure function of
// the arena, never incremented ad hoc.
func assignPriorities(arena []model.CandidateRoute) {
	order := make([]*model.CandidateRoute, len(arena))
	for i := range arena {
		order[i] = &arena[i]
	}
	sort.SliceStable(order, func(i, j int) bool {
		return lowerPriority(order[i], order[j])
	})
	for i, r := range order {
		r.Priority = (i + 1) * PriorityStep
	}
}

// lowerPriority reports whether a must receive a strictly lower priority
// number than b.
func lowerPriority(a, b *model.CandidateRoute) bool {
	if a.Residual != b.Residual {
		return a.Residual
	}
	if a.Host.Rank() != b.Host.Rank() {
		return a.Host.Rank() < b.Host.Rank()
	}
	if a.Path.Rank() != b.Path.Rank() {
		return a.Path.Rank() < b.Path.Rank()
	}
	if len(a.Path.Value) != len(b.Path.Value) {
		return len(a.Path.Value) < len(b.Path.Value)
	}
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.Order != b.Order {
		// First-declared wins: the later declaration sorts lower.
		return a.Order > b.Order
	}
	return a.Name > b.Name
}
