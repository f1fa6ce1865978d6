package traefik

import (
	"bytes"
	"sort"
	"strings"

	"github.com/jxskiss/errors"
	"github.com/jxskiss/gopkg/v2/perf/json"
	"gopkg.in/yaml.v3"

	"github.com/jxskiss/traefik-migrate/pkg/model"
)

const generatedHeader = "# This file is auto generated, do not edit.\n\n"

// Config carries the emission knobs: where the aggregate fallback route
// and the middlewares live, and which entry points the routes bind.
type Config struct {
	FallbackName        string
	FallbackNamespace   string
	MiddlewareNamespace string
	EntryPoints         []string
}

// Manifests is the fully ordered output of one emission pass.
type Manifests struct {
	// Middlewares referenced by any emitted route, sorted by name.
	Middlewares []Middleware
	// Routes holds one IngressRoute per source object, sorted by
	// namespace then name.
	Routes []IngressRoute
	// Fallback aggregates the residual routes; nil when every legacy
	// rule is fully covered.
	Fallback *IngressRoute
}

// Emit renders the resolved route set into manifest objects. Input
// routes arrive sorted by host, path, priority; grouping preserves that
// order, so emitting twice from the same resolution is byte-identical.
func Emit(set *model.ResolvedRouteSet, cfg Config) *Manifests {
	m := &Manifests{}

	mwSeen := make(map[string]bool)
	routesBySource := make(map[model.ObjectKey][]Route)
	var sourceOrder []model.ObjectKey
	var residuals []Route

	for _, r := range set.Routes {
		route := Route{
			Kind:     "Rule",
			Match:    BuildMatch(r.Host, r.Path),
			Priority: r.Priority,
			Services: []Service{{
				Kind:      "Service",
				Name:      r.Backend.Service,
				Namespace: r.Backend.Namespace,
				Port: ServicePort{
					Number: r.Backend.Port.Number,
					Name:   r.Backend.Port.Name,
				},
			}},
		}
		for _, mw := range r.Middlewares {
			route.Middlewares = append(route.Middlewares, MiddlewareRef{
				Name:      mw.Name,
				Namespace: cfg.MiddlewareNamespace,
			})
			if !mwSeen[mw.Name] {
				mwSeen[mw.Name] = true
				m.Middlewares = append(m.Middlewares, renderMiddleware(mw, cfg.MiddlewareNamespace))
			}
		}

		if r.Residual {
			residuals = append(residuals, route)
			continue
		}
		if _, ok := routesBySource[r.Source]; !ok {
			sourceOrder = append(sourceOrder, r.Source)
		}
		routesBySource[r.Source] = append(routesBySource[r.Source], route)
	}

	sort.Slice(sourceOrder, func(i, j int) bool {
		return sourceOrder[i].String() < sourceOrder[j].String()
	})
	for _, src := range sourceOrder {
		m.Routes = append(m.Routes, IngressRoute{
			APIVersion: APIVersion,
			Kind:       KindIngressRoute,
			Metadata:   ObjectMeta{Name: src.Name, Namespace: src.Namespace},
			Spec: IngressRouteSpec{
				EntryPoints: cfg.EntryPoints,
				Routes:      routesBySource[src],
			},
		})
	}

	if len(residuals) > 0 {
		m.Fallback = &IngressRoute{
			APIVersion: APIVersion,
			Kind:       KindIngressRoute,
			Metadata:   ObjectMeta{Name: cfg.FallbackName, Namespace: cfg.FallbackNamespace},
			Spec: IngressRouteSpec{
				EntryPoints: cfg.EntryPoints,
				Routes:      residuals,
			},
		}
	}

	sort.Slice(m.Middlewares, func(i, j int) bool {
		return m.Middlewares[i].Metadata.Name < m.Middlewares[j].Metadata.Name
	})
	return m
}

func renderMiddleware(mw model.MiddlewareObject, namespace string) Middleware {
	out := Middleware{
		APIVersion: APIVersion,
		Kind:       KindMiddleware,
		Metadata:   ObjectMeta{Name: mw.Name, Namespace: namespace},
	}
	p := mw.Middleware
	switch p.Kind {
	case model.MiddlewareStripPrefix:
		out.Spec.StripPrefix = &StripPrefixSpec{Prefixes: p.Prefixes}
	case model.MiddlewareReplacePath:
		out.Spec.ReplacePath = &ReplacePathSpec{Path: p.Path}
	case model.MiddlewareRedirectRegex:
		out.Spec.RedirectRegex = &RedirectRegexSpec{Regex: p.Regex, Replacement: p.Replacement}
	case model.MiddlewareIPWhiteList:
		out.Spec.IPWhiteList = &IPWhiteListSpec{SourceRange: p.SourceRanges}
	case model.MiddlewareBasicAuth:
		out.Spec.BasicAuth = &BasicAuthSpec{Secret: p.Secret}
	}
	return out
}

// BuildMatch renders the v2 match expression for a host/path pair, the
// same shapes the v1 migration produced by hand: HostRegexp for
// host-less rules, Path for exact, PathPrefix otherwise.
func BuildMatch(host model.HostMatch, path model.PathMatch) string {
	var hostExpr string
	switch {
	case host.IsAny():
		hostExpr = "HostRegexp(`{domain:.+}`)"
	case host.IsWildcard():
		base := strings.TrimPrefix(host.Pattern, "*.")
		hostExpr = "HostRegexp(`{subdomain:[a-z0-9-]+}." + base + "`)"
	default:
		hostExpr = "Host(`" + host.Pattern + "`)"
	}

	var pathExpr string
	switch path.Kind {
	case model.PathExact:
		pathExpr = "Path(`" + path.Value + "`)"
	case model.PathPrefix:
		pathExpr = "PathPrefix(`" + path.Value + "`)"
	case model.PathRegex:
		pathExpr = "Path(`{path:" + path.Value + "}`)"
	}

	if pathExpr == "" {
		return hostExpr
	}
	return hostExpr + " && " + pathExpr
}

// Objects returns every manifest in deterministic order: middlewares
// first so references resolve, then per-source routes, the fallback
// route last.
func (m *Manifests) Objects() []interface{} {
	var objs []interface{}
	for i := range m.Middlewares {
		objs = append(objs, m.Middlewares[i])
	}
	for i := range m.Routes {
		objs = append(objs, m.Routes[i])
	}
	if m.Fallback != nil {
		objs = append(objs, *m.Fallback)
	}
	return objs
}

// EncodeYAML serializes manifests as a multi-document YAML stream with
// a generated-file header.
func EncodeYAML(objs ...interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(generatedHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, obj := range objs {
		if err := enc.Encode(obj); err != nil {
			return nil, errors.WithMessage(err, "encoding manifest yaml")
		}
	}
	if err := enc.Close(); err != nil {
		return nil, errors.AddStack(err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON serializes one manifest with stable indentation.
func EncodeJSON(obj interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		return nil, errors.WithMessage(err, "encoding manifest json")
	}
	return data, nil
}
