package ingress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jxskiss/traefik-migrate/pkg/model"
)

func testIngress(name string, annotations map[string]string, rules ...Rule) Ingress {
	return Ingress{
		Metadata: Metadata{
			Name:        name,
			Namespace:   "default",
			Annotations: annotations,
		},
		Spec: Spec{Rules: rules},
	}
}

func httpRule(host string, paths ...Path) Rule {
	return Rule{Host: host, HTTP: &HTTPRules{Paths: paths}}
}

func svcPath(path, svc string, port int32) Path {
	return Path{
		Path: path,
		Backend: Backend{Service: &ServiceBackend{
			Name: svc,
			Port: ServicePort{Number: port},
		}},
	}
}

func TestParseSimpleRule(t *testing.T) {
	objs := []Ingress{
		testIngress("web", nil, httpRule("example.com", svcPath("/api", "web-svc", 80))),
	}
	res := Parse(objs, "")
	require.Empty(t, res.Failures)
	require.Len(t, res.Canonical, 1)
	require.Len(t, res.Legacy, 1)

	rule := res.Canonical[0]
	assert.Equal(t, "default/web", rule.Source.String())
	assert.Equal(t, "example.com", rule.Host.Pattern)
	assert.Equal(t, model.PathPrefix, rule.Path.Kind)
	assert.Equal(t, "/api", rule.Path.Value)
	assert.Equal(t, "web-svc", rule.Backend.Service)
	assert.Equal(t, int32(80), rule.Backend.Port.Number)
	assert.Equal(t, 1, rule.Weight)
	assert.Empty(t, rule.Middlewares)

	legacy := res.Legacy[0]
	assert.False(t, legacy.Opaque)
	require.Len(t, legacy.Entries, 1)
	assert.Equal(t, rule.Path, legacy.Entries[0].Path)
}

func TestParsePathKinds(t *testing.T) {
	testCases := []struct {
		name        string
		annotations map[string]string
		path        Path
		wantKind    model.PathKind
	}{
		{
			name:     "default is prefix",
			path:     svcPath("/api", "svc", 80),
			wantKind: model.PathPrefix,
		},
		{
			name:        "rule-type Path is exact",
			annotations: map[string]string{AnnotationRuleType: "Path"},
			path:        svcPath("/api", "svc", 80),
			wantKind:    model.PathExact,
		},
		{
			name:     "pathType Exact is exact",
			path:     Path{Path: "/api", PathType: PathTypeExact, Backend: svcPath("/api", "svc", 80).Backend},
			wantKind: model.PathExact,
		},
		{
			name:     "root path is exact",
			path:     svcPath("/", "svc", 80),
			wantKind: model.PathExact,
		},
		{
			name:     "empty path is host only",
			path:     svcPath("", "svc", 80),
			wantKind: model.PathNone,
		},
		{
			name: "implementation specific regex",
			path: Path{Path: "/items/[0-9]+", PathType: PathTypeImplementationSpecific,
				Backend: svcPath("", "svc", 80).Backend},
			wantKind: model.PathRegex,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			objs := []Ingress{
				testIngress("web", tc.annotations, httpRule("example.com", tc.path)),
			}
			res := Parse(objs, "")
			require.Empty(t, res.Failures)
			require.Len(t, res.Canonical, 1)
			assert.Equal(t, tc.wantKind, res.Canonical[0].Path.Kind)
		})
	}
}

func TestParseStripPrefixMiddleware(t *testing.T) {
	ann := map[string]string{AnnotationRuleType: "PathPrefixStrip"}
	objs := []Ingress{
		testIngress("web", ann, httpRule("example.com",
			svcPath("/app", "svc", 80),
			svcPath("/", "svc", 80),
		)),
	}
	res := Parse(objs, "")
	require.Empty(t, res.Failures)
	require.Len(t, res.Canonical, 2)

	require.Len(t, res.Canonical[0].Middlewares, 1)
	mw := res.Canonical[0].Middlewares[0]
	assert.Equal(t, model.MiddlewareStripPrefix, mw.Kind)
	assert.Equal(t, []string{"/app"}, mw.Prefixes)

	// No strip middleware for the root path.
	assert.Empty(t, res.Canonical[1].Middlewares)
}

func TestParseAnnotationMiddlewares(t *testing.T) {
	ann := map[string]string{
		AnnotationPriority:        "12",
		AnnotationWhitelistSource: "10.0.0.0/8, 192.168.0.0/16",
		AnnotationAuthType:        "basic",
		AnnotationAuthSecret:      "web-users",
	}
	objs := []Ingress{
		testIngress("web", ann, httpRule("example.com", svcPath("/api", "svc", 80))),
	}
	res := Parse(objs, "")
	require.Empty(t, res.Failures)
	require.Len(t, res.Canonical, 1)

	rule := res.Canonical[0]
	assert.Equal(t, 12, rule.Weight)
	require.Len(t, rule.Middlewares, 2)
	assert.Equal(t, model.MiddlewareBasicAuth, rule.Middlewares[0].Kind)
	assert.Equal(t, "web-users", rule.Middlewares[0].Secret)
	assert.Equal(t, model.MiddlewareIPWhiteList, rule.Middlewares[1].Kind)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, rule.Middlewares[1].SourceRanges)
}

func TestParseFailures(t *testing.T) {
	testCases := []struct {
		name    string
		obj     Ingress
		errType interface{}
	}{
		{
			name:    "empty backend service",
			obj:     testIngress("bad", nil, httpRule("example.com", Path{Path: "/x", Backend: Backend{}})),
			errType: &MalformedRuleError{},
		},
		{
			name:    "invalid host pattern",
			obj:     testIngress("bad", nil, httpRule("exa_mple..com", svcPath("/x", "svc", 80))),
			errType: &MalformedRuleError{},
		},
		{
			name:    "no rule entries",
			obj:     testIngress("bad", nil),
			errType: &MalformedRuleError{},
		},
		{
			name: "basic auth without secret",
			obj: testIngress("bad", map[string]string{AnnotationAuthType: "basic"},
				httpRule("example.com", svcPath("/x", "svc", 80))),
			errType: &MalformedRuleError{},
		},
		{
			name: "forward auth",
			obj: testIngress("bad", map[string]string{AnnotationAuthType: "forward"},
				httpRule("example.com", svcPath("/x", "svc", 80))),
			errType: &UnsupportedRuleError{},
		},
		{
			name: "conflicting auth directives",
			obj: testIngress("bad", map[string]string{
				AnnotationAuthType:   "basic",
				AnnotationAuthSecret: "users",
				AnnotationAuthURL:    "http://auth.local",
			}, httpRule("example.com", svcPath("/x", "svc", 80))),
			errType: &UnsupportedRuleError{},
		},
		{
			name: "unknown rule type",
			obj: testIngress("bad", map[string]string{AnnotationRuleType: "Bogus"},
				httpRule("example.com", svcPath("/x", "svc", 80))),
			errType: &UnsupportedRuleError{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse([]Ingress{tc.obj}, "")
			require.Len(t, res.Failures, 1)
			assert.Empty(t, res.Canonical)
			switch tc.errType.(type) {
			case *MalformedRuleError:
				var e *MalformedRuleError
				assert.ErrorAs(t, res.Failures[0].Err, &e)
			case *UnsupportedRuleError:
				var e *UnsupportedRuleError
				assert.ErrorAs(t, res.Failures[0].Err, &e)
			}
			// Failed objects still appear in the legacy snapshot so the
			// resolver retains them.
			require.Len(t, res.Legacy, 1)
			assert.True(t, res.Legacy[0].Opaque)
		})
	}
}

func TestParseBatchContinuesPastFailures(t *testing.T) {
	objs := []Ingress{
		testIngress("bad", nil, httpRule("example.com", Path{Path: "/x", Backend: Backend{}})),
		testIngress("good", nil, httpRule("example.com", svcPath("/api", "svc", 80))),
	}
	res := Parse(objs, "")
	assert.Len(t, res.Failures, 1)
	require.Len(t, res.Canonical, 1)
	assert.Equal(t, "good", res.Canonical[0].Source.Name)
	assert.Len(t, res.Legacy, 2)
}

func TestParseClassFiltering(t *testing.T) {
	objs := []Ingress{
		testIngress("nginx-owned", map[string]string{AnnotationIngressClass: "nginx"},
			httpRule("example.com", svcPath("/x", "svc", 80))),
		testIngress("traefik-owned", map[string]string{AnnotationIngressClass: "traefik"},
			httpRule("example.com", svcPath("/y", "svc", 80))),
		testIngress("unowned", nil,
			httpRule("example.com", svcPath("/z", "svc", 80))),
	}
	res := Parse(objs, "traefik")
	assert.Equal(t, []model.ObjectKey{{Namespace: "default", Name: "nginx-owned"}}, res.Skipped)
	require.Len(t, res.Canonical, 2)
	assert.Len(t, res.Legacy, 2)
}

func TestParseDefaultBackend(t *testing.T) {
	obj := Ingress{
		Metadata: Metadata{Name: "catchall", Namespace: "default"},
		Spec: Spec{
			DefaultBackend: &Backend{Service: &ServiceBackend{
				Name: "default-svc",
				Port: ServicePort{Number: 8080},
			}},
		},
	}
	res := Parse([]Ingress{obj}, "")
	require.Empty(t, res.Failures)
	require.Len(t, res.Canonical, 1)

	rule := res.Canonical[0]
	assert.True(t, rule.Host.IsAny())
	assert.Equal(t, model.PathNone, rule.Path.Kind)
	assert.Equal(t, "default-svc", rule.Backend.Service)
}

func TestParseUntranslatableOptionsRecorded(t *testing.T) {
	ann := map[string]string{AnnotationErrorPages: "foo"}
	objs := []Ingress{
		testIngress("web", ann, httpRule("example.com", svcPath("/x", "svc", 80))),
	}
	res := Parse(objs, "")
	require.Len(t, res.Canonical, 1)
	assert.Equal(t, []string{AnnotationErrorPages}, res.Canonical[0].UntranslatedOptions)
}

func TestResolveOptionsDefaults(t *testing.T) {
	opts, err := ResolveOptions(Metadata{Name: "web", Namespace: "default"})
	require.NoError(t, err)
	assert.Equal(t, RuleTypePathPrefix, opts.RuleType)
	assert.Equal(t, 1, opts.Priority)
	assert.True(t, opts.PassHostHeader)
	assert.Empty(t, opts.Untranslatable)
}

func TestResolveOptionsRedirectRequiresReplacement(t *testing.T) {
	_, err := ResolveOptions(Metadata{
		Name: "web", Namespace: "default",
		Annotations: map[string]string{AnnotationRedirectRegex: "^http://(.*)"},
	})
	var e *UnsupportedRuleError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, AnnotationRedirectRegex, e.Annotation)
}
