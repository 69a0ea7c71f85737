package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMirrorSink publishes each BizEvent on a per-run pub/sub channel and
// keeps a small live-status hash, so a dashboard can watch a run in
// progress without polling the Postgres sink. Grounded on
// internal/infra/redis.go's client wiring and the teacher's
// modules/location/store.go live-position-mirror pattern, re-purposed from
// GEO-indexed driver positions (this core has no live geo feed to mirror)
// to milestone pub/sub, the live signal this repository actually has.
type RedisMirrorSink struct {
	client  *redis.Client
	channel string
	statusKey string
	timeout time.Duration
}

func NewRedisMirrorSink(client *redis.Client, runID string) *RedisMirrorSink {
	return &RedisMirrorSink{
		client:    client,
		channel:   "arksim:run:" + runID + ":events",
		statusKey: "arksim:run:" + runID + ":status",
		timeout:   500 * time.Millisecond,
	}
}

func (s *RedisMirrorSink) Write(ev BizEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("telemetry: marshal bizevent for redis: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, b).Err(); err != nil {
		return fmt.Errorf("telemetry: redis publish: %w", err)
	}
	return s.client.HSet(ctx, s.statusKey, map[string]any{
		"last_event": ev.Name,
		"last_seq":   ev.Seq,
		"last_t":     ev.SimTime,
	}).Err()
}

func (s *RedisMirrorSink) Close() error { return nil }
