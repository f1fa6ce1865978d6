package traefik

import (
	"github.com/jxskiss/gopkg/v2/perf/json"
)

// Typed IngressRoute and Middleware manifests, traefik.containo.us/v1alpha1.

const (
	APIVersion       = "traefik.containo.us/v1alpha1"
	KindIngressRoute = "IngressRoute"
	KindMiddleware   = "Middleware"
)

type ObjectMeta struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

type IngressRoute struct {
	APIVersion string           `json:"apiVersion" yaml:"apiVersion"`
	Kind       string           `json:"kind" yaml:"kind"`
	Metadata   ObjectMeta       `json:"metadata" yaml:"metadata"`
	Spec       IngressRouteSpec `json:"spec" yaml:"spec"`
}

type IngressRouteSpec struct {
	EntryPoints []string `json:"entryPoints,omitempty" yaml:"entryPoints,omitempty"`
	Routes      []Route  `json:"routes" yaml:"routes"`
}

type Route struct {
	Kind        string          `json:"kind" yaml:"kind"`
	Match       string          `json:"match" yaml:"match"`
	Priority    int             `json:"priority,omitempty" yaml:"priority,omitempty"`
	Middlewares []MiddlewareRef `json:"middlewares,omitempty" yaml:"middlewares,omitempty"`
	Services    []Service       `json:"services,omitempty" yaml:"services,omitempty"`
}

type MiddlewareRef struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

type Service struct {
	Kind      string      `json:"kind" yaml:"kind"`
	Name      string      `json:"name" yaml:"name"`
	Namespace string      `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Port      ServicePort `json:"port" yaml:"port"`
}

// ServicePort marshals as a bare number or a port name, matching the
// IngressRoute schema.
type ServicePort struct {
	Number int32
	Name   string
}

func (p ServicePort) MarshalYAML() (interface{}, error) {
	if p.Number > 0 {
		return int(p.Number), nil
	}
	return p.Name, nil
}

func (p ServicePort) MarshalJSON() ([]byte, error) {
	if p.Number > 0 {
		return json.Marshal(int(p.Number))
	}
	return json.Marshal(p.Name)
}

type Middleware struct {
	APIVersion string         `json:"apiVersion" yaml:"apiVersion"`
	Kind       string         `json:"kind" yaml:"kind"`
	Metadata   ObjectMeta     `json:"metadata" yaml:"metadata"`
	Spec       MiddlewareSpec `json:"spec" yaml:"spec"`
}

type MiddlewareSpec struct {
	StripPrefix   *StripPrefixSpec   `json:"stripPrefix,omitempty" yaml:"stripPrefix,omitempty"`
	ReplacePath   *ReplacePathSpec   `json:"replacePath,omitempty" yaml:"replacePath,omitempty"`
	RedirectRegex *RedirectRegexSpec `json:"redirectRegex,omitempty" yaml:"redirectRegex,omitempty"`
	IPWhiteList   *IPWhiteListSpec   `json:"ipWhiteList,omitempty" yaml:"ipWhiteList,omitempty"`
	BasicAuth     *BasicAuthSpec     `json:"basicAuth,omitempty" yaml:"basicAuth,omitempty"`
}

type StripPrefixSpec struct {
	Prefixes []string `json:"prefixes" yaml:"prefixes"`
}

type ReplacePathSpec struct {
	Path string `json:"path" yaml:"path"`
}

type RedirectRegexSpec struct {
	Regex       string `json:"regex" yaml:"regex"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

type IPWhiteListSpec struct {
	SourceRange []string `json:"sourceRange" yaml:"sourceRange"`
}

type BasicAuthSpec struct {
	Secret string `json:"secret" yaml:"secret"`
}
