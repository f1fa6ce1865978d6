package provider

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jxskiss/errors"
	"github.com/jxskiss/gopkg/v2/easy"
	"github.com/jxskiss/gopkg/v2/perf/json"
	"github.com/jxskiss/gopkg/v2/zlog"

	"github.com/jxskiss/traefik-migrate/pkg/ingress"
)

// NewKubectlProvider shells out to kubectl for a fresh cluster-wide
// ingress dump. When workDir is non-empty the raw dump is cached there
// so later runs can replay it with the file provider.
func NewKubectlProvider(workDir string) Provider {
	return &kubectlProvider{workDir: workDir}
}

type kubectlProvider struct {
	workDir string
}

func (p *kubectlProvider) ListIngresses(ctx context.Context) ([]ingress.Ingress, error) {
	cmd := exec.CommandContext(ctx, "kubectl", "get", "ingress", "-A", "-o", "json")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr

	zlog.Infof("exporting cluster ingresses: %v", cmd.String())
	if err := cmd.Run(); err != nil {
		return nil, errors.WithMessage(err, "failed run kubectl")
	}

	if p.workDir != "" {
		dumpFile := filepath.Join(p.workDir, "ingresses.json")
		if err := easy.WriteFile(dumpFile, out.Bytes(), 0644); err != nil {
			return nil, errors.WithMessagef(err, "failed cache ingress dump %s", dumpFile)
		}
		zlog.Infof("cached ingress dump: %v", dumpFile)
	}

	list := &ingress.List{}
	if err := json.Unmarshal(out.Bytes(), list); err != nil {
		return nil, errors.WithMessage(err, "cannot parse kubectl output")
	}
	return list.Items, nil
}
