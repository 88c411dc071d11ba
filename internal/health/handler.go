// Package health serves the liveness probe.
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler answers liveness checks. It deliberately avoids touching the
// database so a degraded dependency does not take the process out of the
// load balancer rotation.
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
