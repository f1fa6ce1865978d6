package migrate

import (
	"context"
	"path/filepath"

	"github.com/jxskiss/errors"
	"github.com/jxskiss/gopkg/v2/easy"
	"github.com/jxskiss/gopkg/v2/zlog"
	"gopkg.in/yaml.v3"

	"github.com/jxskiss/traefik-migrate/pkg/ingress"
	"github.com/jxskiss/traefik-migrate/pkg/model"
	"github.com/jxskiss/traefik-migrate/pkg/provider"
	"github.com/jxskiss/traefik-migrate/pkg/resolve"
	"github.com/jxskiss/traefik-migrate/pkg/traefik"
	"github.com/jxskiss/traefik-migrate/pkg/translate"
)

// Manager wires the migration pipeline: provider snapshot, parse,
// translate, resolve, emit. All state is built once per invocation;
// rerunning on an unchanged snapshot produces byte-identical output.
type Manager struct {
	cfg  *Configuration
	prov provider.Provider
}

func NewManager(cfg *Configuration, prov provider.Provider) *Manager {
	return &Manager{cfg: cfg, prov: prov}
}

// Outcome is the result of one planning pass.
type Outcome struct {
	Resolved  *model.ResolvedRouteSet
	Manifests *traefik.Manifests
	Report    *Report
}

// Plan runs the full pipeline without touching disk. A resolution
// conflict aborts with no partial output; parse failures and dropped
// options land in the report instead.
func (m *Manager) Plan(ctx context.Context) (*Outcome, error) {
	objs, err := m.prov.ListIngresses(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed list ingresses")
	}
	zlog.Infof("loaded %d legacy ingress objects", len(objs))

	parsed := ingress.Parse(objs, m.cfg.IngressClass)
	canonical := m.dropExcluded(parsed.Canonical)
	translated := translate.Translate(canonical)

	resolved, err := resolve.Resolve(parsed.Legacy, translated.Routes)
	if err != nil {
		return nil, err
	}

	manifests := traefik.Emit(resolved, traefik.Config{
		FallbackName:        m.cfg.FallbackName,
		FallbackNamespace:   m.cfg.FallbackNamespace,
		MiddlewareNamespace: m.cfg.MiddlewareNamespace,
		EntryPoints:         m.cfg.EntryPoints,
	})

	retained := resolved.Plan.Retained()
	zlog.Infof("resolved %d routes, %d middlewares, %d legacy objects retained as fallback",
		len(resolved.Routes), len(manifests.Middlewares), len(retained))

	return &Outcome{
		Resolved:  resolved,
		Manifests: manifests,
		Report: &Report{
			Failures: parsed.Failures,
			Warnings: translated.Warnings,
			Skipped:  parsed.Skipped,
		},
	}, nil
}

// Run plans and writes the manifest files plus the fallback plan to the
// output directory.
func (m *Manager) Run(ctx context.Context) error {
	outcome, err := m.Plan(ctx)
	if err != nil {
		return err
	}
	outcome.Report.Log()

	mf := outcome.Manifests
	for _, mw := range mf.Middlewares {
		file := "middleware-" + mw.Metadata.Name + "." + m.cfg.OutputFormat
		if err = m.writeManifest(file, mw); err != nil {
			return err
		}
	}
	for _, ir := range mf.Routes {
		file := "ingressroute-" + ir.Metadata.Namespace + "-" + ir.Metadata.Name + "." + m.cfg.OutputFormat
		if err = m.writeManifest(file, ir); err != nil {
			return err
		}
	}
	if mf.Fallback != nil {
		if err = m.writeManifest("ingressroute."+m.cfg.OutputFormat, *mf.Fallback); err != nil {
			return err
		}
	}
	if err = m.writePlan(outcome.Resolved.Plan); err != nil {
		return err
	}
	zlog.Infof("wrote manifests to %v", m.cfg.OutputDir)
	return nil
}

// EmitMiddlewares plans and writes only the middleware manifests, for
// rolling out middlewares ahead of the routes that reference them.
func (m *Manager) EmitMiddlewares(ctx context.Context) error {
	outcome, err := m.Plan(ctx)
	if err != nil {
		return err
	}
	outcome.Report.Log()
	for _, mw := range outcome.Manifests.Middlewares {
		file := "middleware-" + mw.Metadata.Name + "." + m.cfg.OutputFormat
		if err = m.writeManifest(file, mw); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) dropExcluded(rules []model.CanonicalRule) []model.CanonicalRule {
	if len(m.cfg.Exclude) == 0 {
		return rules
	}
	excluded := make(map[string]bool, len(m.cfg.Exclude))
	for _, key := range m.cfg.Exclude {
		excluded[key] = true
	}
	kept := rules[:0:0]
	for _, r := range rules {
		if excluded[r.Source.String()] {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (m *Manager) writeManifest(name string, obj interface{}) error {
	var data []byte
	var err error
	if m.cfg.OutputFormat == "json" {
		data, err = traefik.EncodeJSON(obj)
	} else {
		data, err = traefik.EncodeYAML(obj)
	}
	if err != nil {
		return err
	}
	file := filepath.Join(m.cfg.OutputDir, name)
	if err = easy.WriteFile(file, data, 0644); err != nil {
		return errors.WithMessagef(err, "failed write manifest %s", file)
	}
	return nil
}

func (m *Manager) writePlan(plan model.FallbackPlan) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return errors.WithMessage(err, "failed marshal fallback plan")
	}
	file := filepath.Join(m.cfg.OutputDir, "fallback-plan.yaml")
	if err = easy.WriteFile(file, data, 0644); err != nil {
		return errors.WithMessagef(err, "failed write fallback plan %s", file)
	}
	return nil
}
