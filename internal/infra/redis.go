package infra

import "github.com/redis/go-redis/v9"

// NewRedis builds a client against addr, used by telemetry.RedisMirrorSink
// to mirror each run's milestones for a live dashboard to poll.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
