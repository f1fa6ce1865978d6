package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxskiss/traefik-migrate/pkg/model"
)

func canonicalRule(name, hostPattern, path string, svc string, order int) model.CanonicalRule {
	return model.CanonicalRule{
		Source:  model.ObjectKey{Namespace: "default", Name: name},
		Host:    model.HostMatch{Pattern: hostPattern},
		Path:    model.PathMatch{Kind: model.PathPrefix, Value: path},
		Backend: model.Backend{Namespace: "default", Service: svc, Port: model.BackendPort{Number: 80}},
		Weight:  1,
		Order:   order,
	}
}

func TestTranslateDistinctTuples(t *testing.T) {
	rules := []model.CanonicalRule{
		canonicalRule("web", "example.com", "/api", "svc-a", 0),
		canonicalRule("web", "example.com", "/static", "svc-a", 0),
	}
	res := Translate(rules)
	require.Len(t, res.Routes, 2)
	assert.NotEqual(t, res.Routes[0].Name, res.Routes[1].Name)
	assert.Empty(t, res.Warnings)
}

func TestTranslateDuplicateTupleFirstDeclaredWins(t *testing.T) {
	rules := []model.CanonicalRule{
		canonicalRule("first", "example.com", "/api", "svc-a", 0),
		canonicalRule("second", "example.com", "/api", "svc-a", 1),
	}
	res := Translate(rules)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, "first", res.Routes[0].Source.Name)
}

func TestTranslateSameTrafficDifferentBackendKept(t *testing.T) {
	rules := []model.CanonicalRule{
		canonicalRule("first", "example.com", "/api", "svc-a", 0),
		canonicalRule("second", "example.com", "/api", "svc-b", 1),
	}
	res := Translate(rules)
	assert.Len(t, res.Routes, 2)
}

func TestTranslateStableNames(t *testing.T) {
	rules := []model.CanonicalRule{
		canonicalRule("web", "example.com", "/api", "svc-a", 0),
	}
	first := Translate(rules)
	second := Translate(rules)
	require.Len(t, first.Routes, 1)
	assert.Equal(t, first.Routes[0].Name, second.Routes[0].Name)
}

func TestTranslateWarningDeduplication(t *testing.T) {
	rule := canonicalRule("web", "example.com", "/api", "svc-a", 0)
	rule.UntranslatedOptions = []string{"traefik.ingress.kubernetes.io/error-pages"}
	other := canonicalRule("web", "example.com", "/static", "svc-a", 0)
	other.UntranslatedOptions = rule.UntranslatedOptions

	res := Translate([]model.CanonicalRule{rule, other})
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, rule.Source, res.Warnings[0].Source)
	assert.Contains(t, res.Warnings[0].String(), "error-pages")
}

func TestTranslateMiddlewareNaming(t *testing.T) {
	rule := canonicalRule("web", "example.com", "/app", "svc-a", 0)
	rule.Middlewares = []model.Middleware{
		{Kind: model.MiddlewareStripPrefix, Prefixes: []string{"/app"}},
	}
	otherPayload := rule
	otherPayload.Path = model.PathMatch{Kind: model.PathPrefix, Value: "/other"}
	otherPayload.Middlewares = []model.Middleware{
		{Kind: model.MiddlewareStripPrefix, Prefixes: []string{"/other"}},
	}

	res := Translate([]model.CanonicalRule{rule, otherPayload})
	require.Len(t, res.Routes, 2)
	require.Len(t, res.Routes[0].Middlewares, 1)
	require.Len(t, res.Routes[1].Middlewares, 1)

	// Same source, different payload: distinct middleware objects.
	assert.NotEqual(t, res.Routes[0].Middlewares[0].Name, res.Routes[1].Middlewares[0].Name)

	// Identical payloads collapse to the same name.
	again := Translate([]model.CanonicalRule{rule})
	assert.Equal(t, res.Routes[0].Middlewares[0].Name, again.Routes[0].Middlewares[0].Name)
}
