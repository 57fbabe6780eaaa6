package orchestrators

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ochairo/mobscan/internal/domain/entities"
	"github.com/ochairo/mobscan/internal/domain/interfaces"
	"github.com/ochairo/mobscan/internal/domain/interfaces/gateways"
)

// ConnectedMessage is the first event every subscriber receives
const ConnectedMessage = "Connected to log stream"

// LogMultiplexer fans the lines of several log sources into one event stream
// per subscriber
type LogMultiplexer struct {
	sources []gateways.LogSource
	logger  interfaces.Logger
}

// NewLogMultiplexer creates a multiplexer over the given sources
func NewLogMultiplexer(logger interfaces.Logger, sources ...gateways.LogSource) *LogMultiplexer {
	return &LogMultiplexer{sources: sources, logger: logger}
}

// Subscribe starts one reader per source for this subscriber. The returned
// channel is closed once ctx is done and every reader has stopped.
func (m *LogMultiplexer) Subscribe(ctx context.Context) <-chan entities.LogEvent {
	out := make(chan entities.LogEvent, 64)
	out <- entities.NewLogEvent(entities.LogSourceSystem, ConnectedMessage)

	var wg sync.WaitGroup
	for _, src := range m.sources {
		wg.Add(1)
		go func(src gateways.LogSource) {
			defer wg.Done()
			m.forward(ctx, src, out)
		}(src)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (m *LogMultiplexer) forward(ctx context.Context, src gateways.LogSource, out chan<- entities.LogEvent) {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(ctx, lines)
	}()

	for {
		select {
		case line := <-lines:
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			emit(ctx, out, entities.NewLogEvent(src.Name(), line))
		case err := <-done:
			if err != nil && ctx.Err() == nil {
				m.logger.Warn("Log source stopped", interfaces.F("source", src.Name()), interfaces.F("error", err))
				emit(ctx, out, entities.NewLogEvent(entities.LogSourceSystem,
					fmt.Sprintf("Error accessing %s logs: %v", src.Name(), err)))
			}
			return
		case <-ctx.Done():
			<-done
			return
		}
	}
}

func emit(ctx context.Context, out chan<- entities.LogEvent, ev entities.LogEvent) {
	select {
	case out <- ev:
	case <-ctx.Done():
	}
}
