package handlers

import (
	"net/http"

	"bookswap/services"

	"github.com/gin-gonic/gin"
)

var statsService = services.NewStatsService()

// Statistics - публичная сводка площадки
func Statistics(c *gin.Context) {
	stats, err := statsService.GetStatistics(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// QueueStats - состояние очереди подбора по вишлистам
func QueueStats(c *gin.Context) {
	if services.MatchQueueInstance == nil {
		c.JSON(http.StatusOK, gin.H{"error": "queue not initialized"})
		return
	}
	c.JSON(http.StatusOK, services.MatchQueueInstance.GetStats())
}
