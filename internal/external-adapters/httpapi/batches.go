package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
)

// ListBatches returns every batch, newest first
func ListBatches(batches repositories.BatchRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := zap.L().With(zap.String("endpoint", "ListBatches"))

		list, err := batches.ListBatches(c)
		if err != nil {
			l.Error("error listing batches", zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Failed to fetch batches")
			return
		}
		if list == nil {
			list = []entities.Batch{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetBatch returns the per-platform breakdown of one batch
func GetBatch(batches repositories.BatchRepository, scans repositories.ScanRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := zap.L().With(zap.String("endpoint", "GetBatch"))

		batchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			writeError(c, http.StatusNotFound, "Batch not found")
			return
		}

		batch, err := batches.GetBatch(c, batchID)
		if err != nil {
			l.Error("error loading batch", zap.Int64("batch_id", batchID), zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Failed to fetch batch data")
			return
		}
		if batch == nil {
			writeError(c, http.StatusNotFound, "Batch not found")
			return
		}

		list, err := scans.ListScansByBatch(c, batchID)
		if err != nil {
			l.Error("error loading scans", zap.Int64("batch_id", batchID), zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Failed to fetch batch data")
			return
		}

		c.JSON(http.StatusOK, entities.NewBatchDetail(list))
	}
}

// DashboardData returns the per-batch finding trends
func DashboardData(dashboard repositories.DashboardRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		trends, err := dashboard.BatchTrends(c)
		if err != nil {
			zap.L().Error("error loading dashboard data", zap.Error(err))
			writeError(c, http.StatusInternalServerError, "Error fetching dashboard data")
			return
		}
		if trends == nil {
			trends = []entities.BatchTrend{}
		}
		c.JSON(http.StatusOK, trends)
	}
}
