// Package infra wires the deployment-time collaborators the core's outer
// layers (telemetry sinks, the HTTP surface) depend on but the kernel
// never touches directly: a Postgres pool and a Redis client, both built
// once at process startup from the loaded config and handed to whichever
// sink needs them.
package infra

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB opens a pgx connection pool against dsn, used by
// telemetry.PostgresSink to persist run milestones.
func NewDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, dsn)
}
