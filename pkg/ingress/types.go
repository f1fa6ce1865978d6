package ingress

// Hand-modeled subset of the Kubernetes Ingress schema, just enough to
// decode a `kubectl get ingress -A -o json` dump. Migration is a pure
// offline transform, so the full client machinery is not needed.

type List struct {
	Items []Ingress `json:"items" yaml:"items"`
}

type Ingress struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Spec     Spec     `json:"spec" yaml:"spec"`
}

type Metadata struct {
	Name        string            `json:"name" yaml:"name"`
	Namespace   string            `json:"namespace" yaml:"namespace"`
	Annotations map[string]string `json:"annotations" yaml:"annotations"`
}

type Spec struct {
	IngressClassName string   `json:"ingressClassName,omitempty" yaml:"ingressClassName,omitempty"`
	DefaultBackend   *Backend `json:"defaultBackend,omitempty" yaml:"defaultBackend,omitempty"`
	Rules            []Rule   `json:"rules" yaml:"rules"`
}

type Rule struct {
	Host string     `json:"host,omitempty" yaml:"host,omitempty"`
	HTTP *HTTPRules `json:"http,omitempty" yaml:"http,omitempty"`
}

type HTTPRules struct {
	Paths []Path `json:"paths" yaml:"paths"`
}

type Path struct {
	Path     string  `json:"path,omitempty" yaml:"path,omitempty"`
	PathType string  `json:"pathType,omitempty" yaml:"pathType,omitempty"`
	Backend  Backend `json:"backend" yaml:"backend"`
}

type Backend struct {
	Service *ServiceBackend `json:"service,omitempty" yaml:"service,omitempty"`
}

type ServiceBackend struct {
	Name string      `json:"name" yaml:"name"`
	Port ServicePort `json:"port" yaml:"port"`
}

type ServicePort struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Number int32  `json:"number,omitempty" yaml:"number,omitempty"`
}

const (
	PathTypeExact                  = "Exact"
	PathTypePrefix                 = "Prefix"
	PathTypeImplementationSpecific = "ImplementationSpecific"
)
