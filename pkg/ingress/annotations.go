package ingress

import (
	"strings"

	"github.com/spf13/cast"
)

// Traefik v1 annotation keys recognized by the migration. Anything under
// the traefik prefix that is not listed here is reported as unknown.
const (
	AnnotationIngressClass = "kubernetes.io/ingress.class"

	annotationPrefix = "traefik.ingress.kubernetes.io/"

	AnnotationRuleType            = annotationPrefix + "rule-type"
	AnnotationPriority            = annotationPrefix + "priority"
	AnnotationRewriteTarget       = annotationPrefix + "rewrite-target"
	AnnotationRedirectRegex       = annotationPrefix + "redirect-regex"
	AnnotationRedirectReplacement = annotationPrefix + "redirect-replacement"
	AnnotationWhitelistSource     = annotationPrefix + "whitelist-source-range"
	AnnotationAuthType            = annotationPrefix + "auth-type"
	AnnotationAuthSecret          = annotationPrefix + "auth-secret"
	AnnotationAuthURL             = annotationPrefix + "auth-url"
	AnnotationPassHostHeader      = annotationPrefix + "pass-host-header"
	AnnotationAppRoot             = annotationPrefix + "app-root"

	// Recognized but with no IngressRoute equivalent; dropped with a
	// warning by the translator.
	AnnotationErrorPages = annotationPrefix + "error-pages"
	AnnotationBuffering  = annotationPrefix + "buffering"
)

type RuleType string

const (
	RuleTypePathPrefix      RuleType = "PathPrefix"
	RuleTypePath            RuleType = "Path"
	RuleTypePathStrip       RuleType = "PathStrip"
	RuleTypePathPrefixStrip RuleType = "PathPrefixStrip"
	RuleTypeReplacePath     RuleType = "ReplacePath"
)

// Options is the explicit configuration record resolved once from an
// object's annotations. Recognized keys are enumerated above; defaults
// are documented on the fields. The legacy behavior of ad hoc dynamic
// lookups with implicit defaults is deliberately gone.
type Options struct {
	// IngressClass filters which controller owned the object. Empty
	// means unset.
	IngressClass string
	// RuleType selects the path matching mode. Default PathPrefix.
	RuleType RuleType
	// Priority is the explicit legacy routing weight. Default 1.
	Priority int
	// RewriteTarget replaces the matched path when set.
	RewriteTarget string
	// RedirectRegex/RedirectReplacement define a redirect middleware.
	RedirectRegex       string
	RedirectReplacement string
	// WhitelistSourceRange restricts client CIDRs.
	WhitelistSourceRange []string
	// AuthType supports "basic" only; AuthSecret names the htpasswd
	// secret.
	AuthType   string
	AuthSecret string
	// PassHostHeader defaults to true as in Traefik v1.
	PassHostHeader bool
	// AppRoot redirects "/" to the given path.
	AppRoot string
	// Untranslatable lists recognized keys that cannot be expressed in
	// the new format.
	Untranslatable []string
}

// ResolveOptions builds the Options record for one object. Unsupported
// values and conflicting directives fail with UnsupportedRuleError.
func ResolveOptions(meta Metadata) (*Options, error) {
	ann := meta.Annotations
	opts := &Options{
		IngressClass:   ann[AnnotationIngressClass],
		RuleType:       RuleTypePathPrefix,
		Priority:       1,
		PassHostHeader: true,
	}

	if v, ok := ann[AnnotationRuleType]; ok {
		switch RuleType(v) {
		case RuleTypePathPrefix, RuleTypePath, RuleTypePathStrip,
			RuleTypePathPrefixStrip, RuleTypeReplacePath:
			opts.RuleType = RuleType(v)
		default:
			return nil, &UnsupportedRuleError{
				Namespace:  meta.Namespace,
				Name:       meta.Name,
				Annotation: AnnotationRuleType,
				Reason:     "unknown rule type " + v,
			}
		}
	}
	if v, ok := ann[AnnotationPriority]; ok {
		if p := cast.ToInt(v); p > 0 {
			opts.Priority = p
		}
	}
	opts.RewriteTarget = ann[AnnotationRewriteTarget]
	opts.RedirectRegex = ann[AnnotationRedirectRegex]
	opts.RedirectReplacement = ann[AnnotationRedirectReplacement]
	if v, ok := ann[AnnotationWhitelistSource]; ok {
		for _, cidr := range strings.Split(v, ",") {
			if cidr = strings.TrimSpace(cidr); cidr != "" {
				opts.WhitelistSourceRange = append(opts.WhitelistSourceRange, cidr)
			}
		}
	}
	if v, ok := ann[AnnotationPassHostHeader]; ok {
		opts.PassHostHeader = cast.ToBool(v)
	}
	opts.AppRoot = ann[AnnotationAppRoot]

	if v, ok := ann[AnnotationAuthType]; ok {
		switch strings.ToLower(v) {
		case "basic":
			opts.AuthType = "basic"
		default:
			return nil, &UnsupportedRuleError{
				Namespace:  meta.Namespace,
				Name:       meta.Name,
				Annotation: AnnotationAuthType,
				Reason:     "auth type " + v + " cannot be migrated",
			}
		}
		if _, forward := ann[AnnotationAuthURL]; forward {
			return nil, &UnsupportedRuleError{
				Namespace:  meta.Namespace,
				Name:       meta.Name,
				Annotation: AnnotationAuthURL,
				Reason:     "conflicting auth directives: both " +
					AnnotationAuthType + " and " + AnnotationAuthURL + " set",
			}
		}
		opts.AuthSecret = ann[AnnotationAuthSecret]
	}
	if opts.RedirectRegex != "" && opts.RedirectReplacement == "" {
		return nil, &UnsupportedRuleError{
			Namespace:  meta.Namespace,
			Name:       meta.Name,
			Annotation: AnnotationRedirectRegex,
			Reason:     "redirect-regex set without redirect-replacement",
		}
	}

	for _, key := range []string{AnnotationErrorPages, AnnotationBuffering} {
		if _, ok := ann[key]; ok {
			opts.Untranslatable = append(opts.Untranslatable, key)
		}
	}
	return opts, nil
}
