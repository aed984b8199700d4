package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/upconfig/notify"
)

// UserStatus returns server status (running, notify_ws_enabled).
// GET /api/command/v1/status
func UserStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":           true,
		"notify_ws_enabled": notify.NotifyWSEnabled(),
	})
}
