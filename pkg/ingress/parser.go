package ingress

import (
	"regexp"
	"strings"

	"github.com/jxskiss/traefik-migrate/pkg/model"
)

// Failure records one object that could not be parsed into canonical
// form, together with the typed error.
type Failure struct {
	Source model.ObjectKey
	Err    error
}

// ParseResult is the outcome of one parsing pass. Canonical holds the
// normalized rules of cleanly parsed objects; Legacy holds the behavior
// snapshot of every owned object, including failed ones, so the resolver
// can retain them as fallback.
type ParseResult struct {
	Canonical []model.CanonicalRule
	Legacy    []model.LegacyRule
	Failures  []Failure
	Skipped   []model.ObjectKey
}

var hostPattern = regexp.MustCompile(
	`^(\*\.)?([a-z0-9]([-a-z0-9]*[a-z0-9])?\.)*[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

func validHost(host string) bool {
	return host == "" || hostPattern.MatchString(strings.ToLower(host))
}

var regexMeta = "^$*+?()[]{}|\\"

// Parse is a pure transform from legacy objects to the canonical model.
// class, when non-empty, filters objects by ingress class annotation;
// objects owned by another class are skipped. Errors never abort the
// batch: the offending object lands in Failures and stays in Legacy as
// an opaque rule.
func Parse(objs []Ingress, class string) *ParseResult {
	res := &ParseResult{}
	order := 0
	for i, obj := range objs {
		key := model.ObjectKey{Namespace: obj.Metadata.Namespace, Name: obj.Metadata.Name}
		if !ownedByClass(obj, class) {
			res.Skipped = append(res.Skipped, key)
			continue
		}
		rules, entries, err := parseObject(obj, &order)
		legacy := model.LegacyRule{
			Source:  key,
			Entries: entries,
			Order:   i,
			Opaque:  err != nil,
		}
		res.Legacy = append(res.Legacy, legacy)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Source: key, Err: err})
			continue
		}
		res.Canonical = append(res.Canonical, rules...)
	}
	return res
}

func ownedByClass(obj Ingress, class string) bool {
	if class == "" {
		return true
	}
	owner := obj.Metadata.Annotations[AnnotationIngressClass]
	if owner == "" {
		owner = obj.Spec.IngressClassName
	}
	return owner == "" || owner == class
}

// parseObject returns the canonical rules and the legacy behavior entries
// of one object. On error the returned entries hold whatever could be
// modeled before the failure.
func parseObject(obj Ingress, order *int) ([]model.CanonicalRule, []model.LegacyEntry, error) {
	meta := obj.Metadata
	opts, err := ResolveOptions(meta)
	if err != nil {
		return nil, nil, err
	}
	if opts.AuthType == "basic" && opts.AuthSecret == "" {
		return nil, nil, &MalformedRuleError{
			Namespace: meta.Namespace, Name: meta.Name,
			Reason: "auth-type basic requires " + AnnotationAuthSecret,
		}
	}

	key := model.ObjectKey{Namespace: meta.Namespace, Name: meta.Name}
	var rules []model.CanonicalRule
	var entries []model.LegacyEntry

	addEntry := func(host model.HostMatch, path model.PathMatch, backend model.Backend) {
		mws := buildMiddlewares(opts, path)
		entries = append(entries, model.LegacyEntry{
			Host: host, Path: path, Backend: backend, Middlewares: mws,
		})
		rules = append(rules, model.CanonicalRule{
			Source:              key,
			Host:                host,
			Path:                path,
			Backend:             backend,
			Middlewares:         mws,
			Weight:              opts.Priority,
			Order:               *order,
			UntranslatedOptions: opts.Untranslatable,
		})
		*order++
	}

	for _, rule := range obj.Spec.Rules {
		if !validHost(rule.Host) {
			return nil, entries, &MalformedRuleError{
				Namespace: meta.Namespace, Name: meta.Name,
				Reason: "invalid host pattern " + rule.Host,
			}
		}
		host := model.HostMatch{Pattern: strings.ToLower(rule.Host)}
		if rule.HTTP == nil {
			continue
		}
		for _, p := range rule.HTTP.Paths {
			backend, err := resolveBackend(meta, p.Backend)
			if err != nil {
				return nil, entries, err
			}
			addEntry(host, resolvePathMatch(p, opts), backend)
		}
	}

	if len(entries) == 0 && obj.Spec.DefaultBackend != nil {
		backend, err := resolveBackend(meta, *obj.Spec.DefaultBackend)
		if err != nil {
			return nil, entries, err
		}
		addEntry(model.HostMatch{}, model.PathMatch{Kind: model.PathNone}, backend)
	}
	if len(entries) == 0 {
		return nil, nil, &MalformedRuleError{
			Namespace: meta.Namespace, Name: meta.Name,
			Reason: "object declares no rule entries",
		}
	}
	return rules, entries, nil
}

func resolveBackend(meta Metadata, b Backend) (model.Backend, error) {
	if b.Service == nil || b.Service.Name == "" {
		return model.Backend{}, &MalformedRuleError{
			Namespace: meta.Namespace, Name: meta.Name,
			Reason: "backend service name is empty",
		}
	}
	if b.Service.Port.Number == 0 && b.Service.Port.Name == "" {
		return model.Backend{}, &MalformedRuleError{
			Namespace: meta.Namespace, Name: meta.Name,
			Reason: "backend service " + b.Service.Name + " has no port",
		}
	}
	return model.Backend{
		Namespace: meta.Namespace,
		Service:   b.Service.Name,
		Port: model.BackendPort{
			Number: b.Service.Port.Number,
			Name:   b.Service.Port.Name,
		},
	}, nil
}

// resolvePathMatch decides the matcher kind once, here. The default is
// prefix matching; exact matching comes from the rule-type annotation or
// the Exact pathType; regex only from ImplementationSpecific paths that
// contain regex metacharacters.
func resolvePathMatch(p Path, opts *Options) model.PathMatch {
	raw := p.Path
	if raw == "" {
		return model.PathMatch{Kind: model.PathNone}
	}
	if raw == "/" {
		return model.PathMatch{Kind: model.PathExact, Value: "/"}
	}
	if p.PathType == PathTypeExact {
		return model.PathMatch{Kind: model.PathExact, Value: raw}
	}
	if opts.RuleType == RuleTypePath || opts.RuleType == RuleTypePathStrip {
		return model.PathMatch{Kind: model.PathExact, Value: raw}
	}
	if p.PathType == PathTypeImplementationSpecific && strings.ContainsAny(raw, regexMeta) {
		return model.PathMatch{Kind: model.PathRegex, Value: raw}
	}
	return model.PathMatch{Kind: model.PathPrefix, Value: raw}
}

// buildMiddlewares renders the resolved options into ordered canonical
// middleware payloads for one entry. The order is fixed so output is
// deterministic: auth, whitelist, redirects, then path rewrites.
func buildMiddlewares(opts *Options, path model.PathMatch) []model.Middleware {
	var mws []model.Middleware
	if opts.AuthType == "basic" {
		mws = append(mws, model.Middleware{
			Kind:   model.MiddlewareBasicAuth,
			Secret: opts.AuthSecret,
		})
	}
	if len(opts.WhitelistSourceRange) > 0 {
		mws = append(mws, model.Middleware{
			Kind:         model.MiddlewareIPWhiteList,
			SourceRanges: opts.WhitelistSourceRange,
		})
	}
	if opts.RedirectRegex != "" {
		mws = append(mws, model.Middleware{
			Kind:        model.MiddlewareRedirectRegex,
			Regex:       opts.RedirectRegex,
			Replacement: opts.RedirectReplacement,
		})
	}
	if opts.AppRoot != "" && rootSurface(path) {
		mws = append(mws, model.Middleware{
			Kind:        model.MiddlewareRedirectRegex,
			Regex:       "^/$",
			Replacement: opts.AppRoot,
		})
	}
	if stripRuleType(opts.RuleType) && path.Kind != model.PathNone && path.Value != "/" {
		mws = append(mws, model.Middleware{
			Kind:     model.MiddlewareStripPrefix,
			Prefixes: []string{path.Value},
		})
	}
	if opts.RuleType == RuleTypeReplacePath || opts.RewriteTarget != "" {
		target := opts.RewriteTarget
		if target == "" {
			target = "/"
		}
		mws = append(mws, model.Middleware{
			Kind: model.MiddlewareReplacePath,
			Path: target,
		})
	}
	return mws
}

func rootSurface(path model.PathMatch) bool {
	return path.Kind == model.PathNone || path.Value == "/"
}

func stripRuleType(t RuleType) bool {
	return t == RuleTypePathStrip || t == RuleTypePathPrefixStrip
}
