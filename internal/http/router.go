// Package http wires the run-submission HTTP surface: POST /runs and
// GET /runs/:id. Grounded on the teacher's internal/http/router.go gin
// wiring; the order/matching/location routes it registered have no analog
// here, so the surface is just the two run-lifecycle endpoints plus health.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arksim/internal/http/handlers"
	"arksim/internal/http/middleware"
	"arksim/internal/runservice"
)

func NewRouter(runs *runservice.Service) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	runsHandler := handlers.NewRunsHandler(runs)
	r.POST("/runs", runsHandler.Create)
	r.GET("/runs/:id", runsHandler.Status)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
