package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink appends each BizEvent as a row, following the teacher's
// modules/order/store.go append-log pattern (insert-only, no update-in-
// place) rather than mutating a run-status row per event. Grounded on
// io/recorder.py's SQLSink and internal/infra/db.go's pgxpool wiring.
type PostgresSink struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresSink wraps an already-open pool. EnsureSchema should be called
// once per process before the first Write (not from inside Write, to keep
// the hot path to a single INSERT).
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool, timeout: 2 * time.Second}
}

// EnsureSchema creates the run_events table if it doesn't already exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS run_events (
			run_id    text NOT NULL,
			seq       bigint NOT NULL,
			sim_time  double precision NOT NULL,
			name      text NOT NULL,
			rider_id  bigint,
			driver_id bigint,
			reason    text,
			fare      bigint,
			PRIMARY KEY (run_id, seq)
		)`)
	if err != nil {
		return fmt.Errorf("telemetry: ensure run_events schema: %w", err)
	}
	return nil
}

func (s *PostgresSink) Write(ev BizEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO run_events (run_id, seq, sim_time, name, rider_id, driver_id, reason, fare)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, seq) DO NOTHING`,
		ev.RunID, ev.Seq, ev.SimTime, ev.Name, ev.RiderID, ev.DriverID, ev.Reason, ev.Fare)
	if err != nil {
		return fmt.Errorf("telemetry: insert run_event: %w", err)
	}
	return nil
}

// Close is a no-op: the pool is shared across runs and owned by the
// process that opened it.
func (s *PostgresSink) Close() error { return nil }
