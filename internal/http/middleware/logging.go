// Package middleware holds the gin middleware the run-submission router
// wires ahead of every handler.
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logging records method, path, and latency for every request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
