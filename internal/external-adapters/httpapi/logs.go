package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the dashboard frontend is served from another origin
	CheckOrigin: func(*http.Request) bool { return true },
}

// LogStream forwards live log events as server-sent events until the client leaves
func LogStream(logs LogSubscriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logs == nil {
			writeError(c, http.StatusServiceUnavailable, "Log stream not available")
			return
		}

		clientID := uuid.NewString()
		l := zap.L().With(zap.String("endpoint", "LogStream"), zap.String("client", clientID))
		l.Debug("client connected")

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		events := logs.Subscribe(ctx)
		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				l.Warn("failed to encode log event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
				l.Debug("client write failed", zap.Error(err))
				cancel()
				break
			}
			c.Writer.Flush()
		}
		drain(events)
		l.Debug("client disconnected")
	}
}

// LogWebSocket forwards live log events as one JSON text message each
func LogWebSocket(logs LogSubscriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logs == nil {
			writeError(c, http.StatusServiceUnavailable, "Log stream not available")
			return
		}

		clientID := uuid.NewString()
		l := zap.L().With(zap.String("endpoint", "LogWebSocket"), zap.String("client", clientID))

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			l.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		//nolint:errcheck // Defer close on websocket connection
		defer conn.Close()
		l.Info("client connected")

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// the read loop notices the client going away
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		events := logs.Subscribe(ctx)
		for ev := range events {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				l.Debug("client write failed", zap.Error(err))
				cancel()
				break
			}
		}
		drain(events)
		l.Info("client disconnected")
	}
}

// drain waits for the multiplexer to close the stream after cancellation
func drain(events <-chan entities.LogEvent) {
	for range events { //nolint:revive // empty-block: draining channel
	}
}
