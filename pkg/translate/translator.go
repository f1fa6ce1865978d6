package translate

import (
	"fmt"
	"strings"

	"github.com/jxskiss/traefik-migrate/pkg/model"
)

// UnsupportedOptionWarning reports a recognized legacy option with no
// new-format equivalent. The option is dropped; the object survives.
type UnsupportedOptionWarning struct {
	Source     model.ObjectKey
	Annotation string
}

func (w UnsupportedOptionWarning) String() string {
	return fmt.Sprintf("ingress %s: annotation %s has no IngressRoute equivalent, dropped",
		w.Source, w.Annotation)
}

// Result holds the candidate routes of one translation pass plus the
// non-fatal warnings collected along the way.
type Result struct {
	Routes   []model.CandidateRoute
	Warnings []UnsupportedOptionWarning
}

// Translate maps canonical rules to candidate routes, one per distinct
// (host, path, backend) tuple. Duplicate tuples collapse onto the
// first-declared rule. Route and middleware names are pure functions of
// the source coordinates, so reruns never rename existing manifests.
func Translate(rules []model.CanonicalRule) *Result {
	res := &Result{}
	seenTuple := make(map[string]bool)
	warned := make(map[string]bool)

	for _, rule := range rules {
		for _, key := range rule.UntranslatedOptions {
			wk := rule.Source.String() + "|" + key
			if !warned[wk] {
				warned[wk] = true
				res.Warnings = append(res.Warnings, UnsupportedOptionWarning{
					Source:     rule.Source,
					Annotation: key,
				})
			}
		}

		tuple := tupleKey(rule.Host, rule.Path, rule.Backend)
		if seenTuple[tuple] {
			continue
		}
		seenTuple[tuple] = true

		res.Routes = append(res.Routes, model.CandidateRoute{
			Name:        RouteName(rule.Source, rule.Host, rule.Path),
			Source:      rule.Source,
			Host:        rule.Host,
			Path:        rule.Path,
			Backend:     rule.Backend,
			Middlewares: nameMiddlewares(rule.Source, rule.Middlewares),
			Weight:      rule.Weight,
			Order:       rule.Order,
		})
	}
	return res
}

// RouteName derives the stable manifest name for a route from its source
// object, host and path.
func RouteName(src model.ObjectKey, host model.HostMatch, path model.PathMatch) string {
	return model.Slug(src.Namespace, src.Name, host.Pattern, path.Kind.String(), path.Value)
}

// MiddlewareName derives the stable manifest name for one middleware
// payload of a source object.
func MiddlewareName(src model.ObjectKey, mw model.Middleware) string {
	return model.Slug(src.Namespace, src.Name, string(mw.Kind), payloadKey(mw))
}

func nameMiddlewares(src model.ObjectKey, mws []model.Middleware) []model.MiddlewareObject {
	var objs []model.MiddlewareObject
	for _, mw := range mws {
		objs = append(objs, model.MiddlewareObject{
			Name:       MiddlewareName(src, mw),
			Middleware: mw,
		})
	}
	return objs
}

func tupleKey(host model.HostMatch, path model.PathMatch, backend model.Backend) string {
	return strings.Join([]string{
		host.Pattern, path.Kind.String(), path.Value, backend.String(),
	}, "|")
}

func payloadKey(mw model.Middleware) string {
	parts := []string{mw.Path, mw.Regex, mw.Replacement, mw.Secret}
	parts = append(parts, mw.Prefixes...)
	parts = append(parts, mw.SourceRanges...)
	return strings.Join(parts, "|")
}
