package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServiceInfo identifies the service on the root endpoint.
type ServiceInfo struct {
	Name    string `json:"message"`
	Version string `json:"version"`
}

func Root(info ServiceInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
