// Entry point: loads a scenario file, builds and seeds the core, runs it
// to completion, and flushes telemetry to stdout/JSONL. Grounded on the
// teacher's cmd/ark-api/main.go load-config/wire-services/run sequence,
// re-expressed for a one-shot batch run instead of a long-lived server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"arksim/internal/runservice"
	"arksim/internal/simconfig"
	"arksim/internal/telemetry"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario YAML document")
	outPath := flag.String("out", "", "path to write newline-delimited JSON analytics events (default: stdout)")
	flag.Parse()

	if *scenarioPath == "" {
		log.Fatal("arksim: -scenario is required")
	}

	data, err := os.ReadFile(*scenarioPath)
	if err != nil {
		log.Fatalf("arksim: read scenario: %v", err)
	}

	scenario, err := simconfig.Load(data)
	if err != nil {
		log.Fatalf("arksim: %v", err)
	}

	runID := scenario.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	svc := runservice.NewService(nil)
	run := svc.Submit(runID, scenario)

	// Submit starts the run in its own goroutine; a CLI invocation is the
	// only caller of that run, so block here until it settles instead of
	// polling the way the HTTP surface does.
	run.Wait()

	view := run.Snapshot()
	if view.Status == runservice.StatusFailed {
		log.Fatalf("arksim: run %s failed: %s", view.ID, view.Err)
	}

	fmt.Printf("run %s: processed=%d last_t=%.3f\n", view.ID, view.Processed, view.LastT)

	if err := writeEvents(*outPath, run.Events()); err != nil {
		log.Fatalf("arksim: write events: %v", err)
	}
}

// writeEvents appends every recorded milestone to path as newline-delimited
// JSON (or stdout, if path is empty), reusing the same JSONLSink a
// Postgres-less deployment would wire into the Recorder directly.
func writeEvents(path string, events []telemetry.BizEvent) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	sink := telemetry.NewJSONLSink(w)
	for _, ev := range events {
		if err := sink.Write(ev); err != nil {
			return err
		}
	}
	return sink.Close()
}
