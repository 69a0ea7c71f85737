// Entry point for the run-submission API: loads deployment config, wires
// the Postgres/Redis telemetry sinks when they are reachable, and serves
// POST /runs and GET /runs/:id until interrupted.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"arksim/internal/config"
	httptransport "arksim/internal/http"
	"arksim/internal/infra"
	"arksim/internal/runservice"
	"arksim/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := openDB(ctx, cfg.DB.DSN)
	redisClient := openRedis(ctx, cfg.Redis.Addr)

	svc := runservice.NewService(func(runID string) []telemetry.Sink {
		var sinks []telemetry.Sink
		if dbPool != nil {
			sinks = append(sinks, telemetry.NewPostgresSink(dbPool))
		}
		if redisClient != nil {
			sinks = append(sinks, telemetry.NewRedisMirrorSink(redisClient, runID))
		}
		return sinks
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: httptransport.NewRouter(svc)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// openDB connects the telemetry pool and prepares the run_events schema. A
// missing database downgrades the deployment to in-memory results only.
func openDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := infra.NewDB(ctx, dsn)
	if err != nil {
		log.Printf("postgres unavailable, persisted telemetry disabled: %v", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		log.Printf("postgres unreachable, persisted telemetry disabled: %v", err)
		pool.Close()
		return nil
	}
	if err := telemetry.NewPostgresSink(pool).EnsureSchema(ctx); err != nil {
		log.Printf("postgres schema init failed, persisted telemetry disabled: %v", err)
		pool.Close()
		return nil
	}
	return pool
}

func openRedis(ctx context.Context, addr string) *goredis.Client {
	client := infra.NewRedis(addr)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis unreachable, live mirror disabled: %v", err)
		return nil
	}
	return client
}
