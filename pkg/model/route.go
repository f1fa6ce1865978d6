package model

// CandidateRoute is one canonical rule rendered in new-format terms.
// Priority is zero until the resolver assigns the global order; after
// resolution no other component may change it.
type CandidateRoute struct {
	Name        string
	Source      ObjectKey
	Host        HostMatch
	Path        PathMatch
	Backend     Backend
	Middlewares []MiddlewareObject
	Weight      int
	Order       int
	// Residual marks a route synthesized by the resolver to reproduce
	// uncovered legacy behavior at lower priority than any translated
	// route.
	Residual bool
	Priority int
}

// Covers reports whether this route accepts at least the traffic of the
// given legacy entry and targets the same backend, so that retiring the
// legacy entry cannot reroute or drop its traffic.
func (r *CandidateRoute) Covers(e LegacyEntry) bool {
	return r.Host.Covers(e.Host) &&
		r.Path.Covers(e.Path) &&
		r.Backend.Equal(e.Backend)
}

// PlanEntry records the coverage verdict for one legacy rule.
type PlanEntry struct {
	Source ObjectKey `json:"source" yaml:"source"`
	// Covered is true when every (host, path) entry of the legacy rule
	// is covered by at least one candidate route.
	Covered bool `json:"covered" yaml:"covered"`
	// CoveringRoutes lists covering candidate route names in declaration
	// order.
	CoveringRoutes []string `json:"coveringRoutes,omitempty" yaml:"coveringRoutes,omitempty"`
	// FallbackRetained marks legacy rules that must stay active.
	FallbackRetained bool `json:"fallbackRetained" yaml:"fallbackRetained"`
}

// FallbackPlan is the resolver's verdict per legacy rule, ordered by
// legacy declaration order.
type FallbackPlan struct {
	Entries []PlanEntry `json:"entries" yaml:"entries"`
}

// ByKey returns the plan entry for a legacy object, or nil.
func (p *FallbackPlan) ByKey(key ObjectKey) *PlanEntry {
	for i := range p.Entries {
		if p.Entries[i].Source == key {
			return &p.Entries[i]
		}
	}
	return nil
}

// Retained returns the keys of legacy objects that must remain active,
// in declaration order.
func (p *FallbackPlan) Retained() []ObjectKey {
	var keys []ObjectKey
	for _, e := range p.Entries {
		if e.FallbackRetained {
			keys = append(keys, e.Source)
		}
	}
	return keys
}

// ResolvedRouteSet is the final route arena with priorities assigned,
// ordered by host, then path, then priority, plus the fallback plan.
type ResolvedRouteSet struct {
	Routes []CandidateRoute
	Plan   FallbackPlan
}
