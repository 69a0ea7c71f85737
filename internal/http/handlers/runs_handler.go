// Package handlers implements the run-submission HTTP surface. Grounded on
// the teacher's internal/http/handlers/order_handler.go (bind request,
// delegate to a service, map the result/error to a status code and JSON
// body).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"arksim/internal/runservice"
	"arksim/internal/simconfig"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// RunsHandler exposes POST /runs and GET /runs/:id over a runservice.Service.
type RunsHandler struct {
	runs *runservice.Service
}

func NewRunsHandler(runs *runservice.Service) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// Create accepts a scenario YAML document as the request body, starts it
// running in the background, and returns its run id immediately — it does
// not wait for the run to finish.
func (h *RunsHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	scenario, err := simconfig.Load(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	runID := scenario.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	run := h.runs.Submit(runID, scenario)
	c.JSON(http.StatusAccepted, gin.H{"run_id": run.ID, "status": run.Snapshot().Status})
}

// Status reports a run's current status and, once finished, its recorded
// analytics events.
func (h *RunsHandler) Status(c *gin.Context) {
	id := c.Param("id")
	run, ok := h.runs.Get(id)
	if !ok {
		writeError(c, http.StatusNotFound, "unknown run id")
		return
	}

	view := run.Snapshot()
	resp := gin.H{
		"run_id":    view.ID,
		"status":    view.Status,
		"processed": view.Processed,
		"last_t":    view.LastT,
	}
	if view.Status == runservice.StatusFailed {
		resp["error"] = view.Err
	}
	if view.Status == runservice.StatusDone {
		resp["events"] = run.Events()
	}
	c.JSON(http.StatusOK, resp)
}
