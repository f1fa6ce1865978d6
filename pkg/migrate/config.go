package migrate

import (
	"github.com/jxskiss/errors"
	"github.com/jxskiss/gopkg/v2/confr"
	"github.com/jxskiss/gopkg/v2/easy"
	"github.com/jxskiss/gopkg/v2/zlog"
)

type Configuration struct {
	// IngressClass filters which legacy objects the migration owns.
	// Empty migrates every object.
	IngressClass string `yaml:"ingressClass" env:"TM_INGRESS_CLASS"`

	// FallbackName/FallbackNamespace place the aggregate IngressRoute
	// that keeps uncovered legacy traffic routable.
	FallbackName      string `yaml:"fallbackName" default:"traefik-v1-fallback"`
	FallbackNamespace string `yaml:"fallbackNamespace" env:"TM_FALLBACK_NAMESPACE" default:"kube-system"`

	// MiddlewareNamespace is where translated Middleware objects live.
	MiddlewareNamespace string `yaml:"middlewareNamespace" env:"TM_MIDDLEWARE_NAMESPACE" default:"traefik-middleware"`

	// EntryPoints bound by every emitted route. Default: web.
	EntryPoints []string `yaml:"entryPoints"`

	// Exclude lists namespace/name keys deliberately left out of
	// translation; their traffic is preserved through residual routes.
	Exclude []string `yaml:"exclude"`

	OutputDir    string `yaml:"outputDir" flag:"output-dir" default:"./out"`
	OutputFormat string `yaml:"outputFormat" flag:"format" default:"yaml"`
}

func ReadConfig(confFile string) (*Configuration, error) {
	cfg := &Configuration{}
	var files []string
	if confFile != "" {
		files = append(files, confFile)
	}
	err := confr.New(&confr.Config{}).Load(cfg, files...)
	if err != nil {
		return nil, errors.WithMessage(err, "failed read configuration")
	}
	if len(cfg.EntryPoints) == 0 {
		cfg.EntryPoints = []string{"web"}
	}
	if cfg.OutputFormat != "yaml" && cfg.OutputFormat != "json" {
		return nil, errors.Errorf("unknown output format %q, want yaml or json", cfg.OutputFormat)
	}
	zlog.Infof("migration configuration: %v", easy.JSON(cfg))
	return cfg, nil
}
