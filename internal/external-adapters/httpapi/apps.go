package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
)

// Inventory returns the latest scan of every bundle id
func Inventory(dashboard repositories.DashboardRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := dashboard.Inventory(c)
		if err != nil {
			zap.L().Error("error loading app inventory", zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Failed to fetch app inventory")
			return
		}
		if len(items) == 0 {
			writeError(c, http.StatusNotFound, "No apps found")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// AppHistory returns an app's scan in the batch given by ?batchId= with its trend
func AppHistory(dashboard repositories.DashboardRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := zap.L().With(zap.String("endpoint", "AppHistory"))
		bundleID := c.Param("bundleId")

		batchID, err := strconv.ParseInt(c.Query("batchId"), 10, 64)
		if err != nil {
			writeError(c, http.StatusNotFound, "App not found")
			return
		}

		history, err := dashboard.AppHistory(c, bundleID, batchID)
		if err != nil {
			l.Error("error loading app history", zap.String("bundle_id", bundleID), zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Failed to fetch app data")
			return
		}
		if history == nil {
			writeError(c, http.StatusNotFound, "App not found")
			return
		}
		c.JSON(http.StatusOK, history)
	}
}
