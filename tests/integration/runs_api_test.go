package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httptransport "arksim/internal/http"
	"arksim/internal/runservice"
)

const scenarioYAML = `
name: integration
run_id: it-run-1
sim:
  epoch: [2024, 1, 1, 0, 0, 0]
  seed: 7
  duration: 1200
world:
  capacity: 2
  arrival_rate_per_s: 0.02
travel_time:
  kind: fixed
  pickup_s: 30
  dropoff_s: 120
dwell:
  kind: zero
`

type statusResponse struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Events    []struct {
		Name    string  `json:"name"`
		SimTime float64 `json:"sim_time"`
	} `json:"events"`
	Error string `json:"error"`
}

func newServer() *httptest.Server {
	return httptest.NewServer(httptransport.NewRouter(runservice.NewService(nil)))
}

func postScenario(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/runs", "application/x-yaml", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /runs: %v", err)
	}
	return resp
}

func getStatus(t *testing.T, srv *httptest.Server, id string) statusResponse {
	t.Helper()
	resp, err := http.Get(srv.URL + "/runs/" + id)
	if err != nil {
		t.Fatalf("GET /runs/%s: %v", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /runs/%s: status %d", id, resp.StatusCode)
	}
	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return st
}

func waitDone(t *testing.T, srv *httptest.Server, id string) statusResponse {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		st := getStatus(t, srv, id)
		switch st.Status {
		case "done":
			return st
		case "failed":
			t.Fatalf("run %s failed: %s", id, st.Error)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("run %s did not finish", id)
	return statusResponse{}
}

func TestSubmitRunLifecycle(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := postScenario(t, srv, scenarioYAML)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST /runs: status %d, want 202", resp.StatusCode)
	}
	var accepted struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode accept: %v", err)
	}
	if accepted.RunID != "it-run-1" {
		t.Fatalf("run_id = %q, want it-run-1", accepted.RunID)
	}

	st := waitDone(t, srv, accepted.RunID)
	if st.Processed == 0 {
		t.Fatalf("processed = 0, want > 0")
	}
	var requested, completed int
	for _, ev := range st.Events {
		switch ev.Name {
		case "TripRequested":
			requested++
		case "TripCompleted":
			completed++
		}
	}
	if requested == 0 {
		t.Fatalf("no TripRequested milestones recorded")
	}
	if completed == 0 {
		t.Fatalf("no TripCompleted milestones recorded")
	}
}

func TestMalformedScenarioRejected(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := postScenario(t, srv, "sim: {duration: -5}")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("POST /runs: status %d, want 400", resp.StatusCode)
	}
}

func TestUnknownRunID(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", resp.StatusCode)
	}
}

func TestIdenticalSeedsReplayIdenticalTraces(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	submit := func(runID string) statusResponse {
		body := strings.Replace(scenarioYAML, "it-run-1", runID, 1)
		resp := postScenario(t, srv, body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("POST /runs: status %d", resp.StatusCode)
		}
		return waitDone(t, srv, runID)
	}

	a := submit("replay-a")
	b := submit("replay-b")
	if a.Processed != b.Processed {
		t.Fatalf("processed %d vs %d", a.Processed, b.Processed)
	}
	if len(a.Events) != len(b.Events) {
		t.Fatalf("event counts %d vs %d", len(a.Events), len(b.Events))
	}
	for i := range a.Events {
		if a.Events[i] != b.Events[i] {
			t.Fatalf("event %d: %+v vs %+v", i, a.Events[i], b.Events[i])
		}
	}
}
