// Package httpapi serves the dashboard API and the live log stream.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
	"github.com/ochairo/mobscan/internal/domain/interfaces/repositories"
)

const requestIDHeader = "X-Request-ID"

// LogSubscriber opens an independent live log stream per client
type LogSubscriber interface {
	Subscribe(ctx context.Context) <-chan entities.LogEvent
}

// FileResolver maps a request path to an artifact on disk
type FileResolver interface {
	ResolveFile(rel string) (string, error)
}

// Dependencies are the collaborators behind the routes.
// Logs and Trigger may be nil; their routes then answer with an error.
type Dependencies struct {
	Batches   repositories.BatchRepository
	Scans     repositories.ScanRepository
	Dashboard repositories.DashboardRepository
	Files     FileResolver
	Logs      LogSubscriber
	Trigger   gateways.BuildTrigger
	UploadDir string
}

// NewEngine builds the gin engine with every dashboard route registered
func NewEngine(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())
	router.GET("/health", Health())

	router.GET("/ws/logs", LogWebSocket(deps.Logs))

	api := router.Group("/api")
	{
		api.GET("/batches", ListBatches(deps.Batches))
		api.GET("/batches/:id", GetBatch(deps.Batches, deps.Scans))
		api.GET("/dashboard-data", DashboardData(deps.Dashboard))

		api.GET("/apps/inventory", Inventory(deps.Dashboard))
		api.GET("/apps/:bundleId", AppHistory(deps.Dashboard))

		api.GET("/files/*path", ServeFile(deps.Files))
		api.GET("/logs/stream", LogStream(deps.Logs))

		api.POST("/upload-ipa", UploadIPA(deps.UploadDir))
		api.POST("/trigger-scan", TriggerScan(deps.Trigger))
	}

	return router
}

// Run serves the engine on addr until ctx is done, then shuts down gracefully
func Run(ctx context.Context, addr string, engine *gin.Engine) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("dashboard server failed: %w", err)
	}
	return Serve(ctx, ln, engine)
}

// Serve serves the engine on ln until ctx is done. Request contexts derive
// from ctx so streaming handlers end before the shutdown deadline.
func Serve(ctx context.Context, ln net.Listener, engine *gin.Engine) error {
	srv := &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting dashboard server", zap.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	zap.L().Info("shutting down dashboard server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dashboard server: %w", err)
	}
	return nil
}

// Health reports liveness
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// RequestLogger tags each request with an X-Request-ID and logs its outcome
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		zap.L().Debug("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
