package provider

import (
	"context"

	"github.com/jxskiss/traefik-migrate/pkg/ingress"
)

// Provider supplies the legacy cluster state snapshot. The migration
// core never talks to a cluster itself; it consumes whatever snapshot a
// provider materializes.
type Provider interface {
	ListIngresses(ctx context.Context) ([]ingress.Ingress, error)
}
