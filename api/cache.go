package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ClearCache bridges the dashboard's clear-caches action to the controller's
// command channel and relays the acknowledgement.
func (server *Server) ClearCache(c *gin.Context) {
	if server.Controller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache controller is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	ack, err := server.Controller.ClearCache(ctx)
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "clearing caches timed out"})
		return
	}
	c.JSON(http.StatusOK, ack)
}

// CacheStats reports hit/miss counters and per-store asset counts.
func (server *Server) CacheStats(c *gin.Context) {
	if server.Controller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache controller is not configured"})
		return
	}

	stats, err := server.Controller.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reading cache stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListLogs renders the controller's persisted event log for the dashboard.
func (server *Server) ListLogs(c *gin.Context) {
	if server.Controller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache controller is not configured"})
		return
	}

	logs, err := server.Controller.Logs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reading logs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
