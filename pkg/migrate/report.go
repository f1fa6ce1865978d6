package migrate

import (
	"github.com/jxskiss/gopkg/v2/zlog"

	"github.com/jxskiss/traefik-migrate/pkg/ingress"
	"github.com/jxskiss/traefik-migrate/pkg/model"
	"github.com/jxskiss/traefik-migrate/pkg/translate"
)

// Report collects the non-fatal outcomes of one run: per-object parse
// failures and dropped-option warnings. It travels alongside successful
// output; only a resolution conflict prevents output entirely.
type Report struct {
	Failures []ingress.Failure
	Warnings []translate.UnsupportedOptionWarning
	Skipped  []model.ObjectKey
}

func (r *Report) Empty() bool {
	return len(r.Failures) == 0 && len(r.Warnings) == 0
}

// Log writes the report through the standard logger, one line per item.
func (r *Report) Log() {
	for _, f := range r.Failures {
		zlog.Warnf("excluded from translation: %v", f.Err)
	}
	for _, w := range r.Warnings {
		zlog.Warnf("%s", w.String())
	}
	if len(r.Skipped) > 0 {
		zlog.Infof("skipped %d objects owned by another ingress class", len(r.Skipped))
	}
}
