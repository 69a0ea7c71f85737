// Test cases for the run-submission API: scenario lifecycle, determinism
// across identical seeds, persisted telemetry, and a small load check.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

// scenarioYAML is the document every case submits: a short fixed-oracle
// run, seeded so repeat submissions replay the same trace.
const scenarioYAML = `
name: bench
sim:
  epoch: [2024, 1, 1, 0, 0, 0]
  seed: 42
  duration: 600
world:
  capacity: 3
  arrival_rate_per_s: 0.05
travel_time:
  kind: fixed
  pickup_s: 30
  dropoff_s: 120
dwell:
  kind: zero
`

type runStatus struct {
	RunID     string          `json:"run_id"`
	Status    string          `json:"status"`
	Processed int             `json:"processed"`
	Events    json.RawMessage `json:"events"`
	Error     string          `json:"error"`
}

func (r *Runner) submit(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/runs", bytes.NewBufferString(scenarioYAML))
	if err != nil {
		return "", err
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit: status %d: %s", resp.StatusCode, body)
	}
	var st runStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return "", err
	}
	return st.RunID, nil
}

func (r *Runner) pollDone(ctx context.Context, runID string) (runStatus, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/runs/"+runID, nil)
		if err != nil {
			return runStatus{}, err
		}
		resp, err := r.httpc.Do(req)
		if err != nil {
			return runStatus{}, err
		}
		var st runStatus
		err = json.NewDecoder(resp.Body).Decode(&st)
		resp.Body.Close()
		if err != nil {
			return runStatus{}, err
		}
		switch st.Status {
		case "done":
			return st, nil
		case "failed":
			return st, fmt.Errorf("run failed: %s", st.Error)
		}
		select {
		case <-ctx.Done():
			return runStatus{}, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/health", nil)
				resp, err := r.httpc.Do(req)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d", resp.StatusCode)}
				}
				return Result{Status: "PASS", Latency: time.Since(start)}
			},
		},
		{
			Name: "API: submit and complete a run",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				id, err := r.submit(ctx)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				st, err := r.pollDone(ctx, id)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if st.Processed == 0 {
					return Result{Status: "FAIL", Note: "no events processed"}
				}
				return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("processed=%d", st.Processed)}
			},
		},
		{
			Name: "API: identical seeds replay identical traces",
			Run: func(ctx context.Context, r *Runner) Result {
				id1, err := r.submit(ctx)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				id2, err := r.submit(ctx)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				st1, err := r.pollDone(ctx, id1)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				st2, err := r.pollDone(ctx, id2)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if st1.Processed != st2.Processed {
					return Result{Status: "FAIL", Note: fmt.Sprintf("processed %d vs %d", st1.Processed, st2.Processed)}
				}
				if !sameTraces(st1.Events, st2.Events) {
					return Result{Status: "FAIL", Note: "event traces differ"}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: malformed scenario rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/runs", bytes.NewBufferString("sim: {duration: -1}"))
				resp, err := r.httpc.Do(req)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusBadRequest {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d, want 400", resp.StatusCode)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: unknown run id",
			Run: func(ctx context.Context, r *Runner) Result {
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/runs/no-such-run", nil)
				resp, err := r.httpc.Do(req)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusNotFound {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d, want 404", resp.StatusCode)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "DB: run milestones persisted",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "dsn not configured"}
				}
				id, err := r.submit(ctx)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if _, err := r.pollDone(ctx, id); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				var n int
				queryCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				err = r.db.QueryRow(queryCtx, "SELECT count(*) FROM run_events WHERE run_id = $1", id).Scan(&n)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: "FAIL", Note: "no rows for run"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("rows=%d", n)}
			},
		},
		{
			Name: "Redis: live run status mirrored",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				id, err := r.submit(ctx)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if _, err := r.pollDone(ctx, id); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				queryCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				fields, err := r.redis.HGetAll(queryCtx, "arksim:run:"+id+":status").Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if len(fields) == 0 {
					return Result{Status: "FAIL", Note: "status hash empty"}
				}
				return Result{Status: "PASS", Note: "last_event=" + fields["last_event"]}
			},
		},
		{
			Name: "Load: concurrent submissions",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				var wg sync.WaitGroup
				errs := make(chan error, r.cfg.Concurrency)
				for i := 0; i < r.cfg.Concurrency; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						id, err := r.submit(ctx)
						if err == nil {
							_, err = r.pollDone(ctx, id)
						}
						if err != nil {
							errs <- err
						}
					}()
				}
				wg.Wait()
				close(errs)
				if err := <-errs; err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("n=%d", r.cfg.Concurrency)}
			},
		},
	}
}

// sameTraces compares two recorded event lists field by field, ignoring
// run_id (which differs by construction).
func sameTraces(a, b json.RawMessage) bool {
	type ev struct {
		SimTime  float64 `json:"sim_time"`
		Seq      int64   `json:"seq"`
		Name     string  `json:"name"`
		RiderID  int64   `json:"rider_id"`
		DriverID int64   `json:"driver_id"`
		Reason   string  `json:"reason"`
		Fare     int64   `json:"fare"`
	}
	var ea, eb []ev
	if json.Unmarshal(a, &ea) != nil || json.Unmarshal(b, &eb) != nil {
		return false
	}
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}
