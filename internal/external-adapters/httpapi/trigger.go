package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gw "github.com/ochairo/mobscan/internal/domain-adapters/gateways"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
)

// TriggerScan queues the manual scan job on the CI server
func TriggerScan(trigger gateways.BuildTrigger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := zap.L().With(zap.String("endpoint", "TriggerScan"))

		if trigger == nil {
			writeError(c, http.StatusInternalServerError, "Jenkins credentials not configured")
			return
		}

		err := trigger.TriggerScanJob(c)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Scan job triggered successfully"})
			return
		}

		var triggerErr *gw.TriggerError
		switch {
		case errors.As(err, &triggerErr):
			l.Warn("jenkins rejected build", zap.Int("status", triggerErr.Status))
			c.JSON(triggerErr.Status, gin.H{"error": triggerErr.Error(), "details": triggerErr.Details})
		case errors.Is(err, gw.ErrTriggerNotConfigured):
			l.Error("jenkins credentials not configured")
			writeError(c, http.StatusInternalServerError, "Jenkins credentials not configured")
		default:
			l.Error("failed to trigger scan", zap.Error(err))
			writeError(c, http.StatusInternalServerError, err.Error())
		}
	}
}
