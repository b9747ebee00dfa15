package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health は生存確認に応答します。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
