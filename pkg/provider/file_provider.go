package provider

import (
	"context"
	"os"
	"strings"

	"github.com/jxskiss/errors"
	"github.com/jxskiss/gopkg/v2/perf/json"
	"gopkg.in/yaml.v3"

	"github.com/jxskiss/traefik-migrate/pkg/ingress"
)

// NewFileProvider reads a previously captured ingress dump, either the
// raw `kubectl get ingress -A -o json` output or a YAML rendering of the
// same list.
func NewFileProvider(path string) Provider {
	return &fileProvider{path: path}
}

type fileProvider struct {
	path string
}

func (p *fileProvider) ListIngresses(ctx context.Context) ([]ingress.Ingress, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.AddStack(err)
	}
	list := &ingress.List{}
	if strings.HasSuffix(p.path, ".yaml") || strings.HasSuffix(p.path, ".yml") {
		err = yaml.Unmarshal(data, list)
	} else {
		err = json.Unmarshal(data, list)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot parse ingress dump %s", p.path)
	}
	return list.Items, nil
}
