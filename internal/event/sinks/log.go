// Package sinks provides reusable Sink implementations for the event Hub.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/devscout/research-agent/internal/event"
)

// Log writes lifecycle events to a zap logger. Progress events log at debug
// level to keep steady-state output quiet.
type Log struct {
	logger *zap.Logger
}

// NewLog constructs a Log sink.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Consume logs one event.
func (s *Log) Consume(_ context.Context, evt event.Event) error {
	fields := []zap.Field{
		zap.String("request_id", evt.RequestID),
		zap.Uint64("generation", evt.Generation),
	}
	switch evt.Kind {
	case event.KindSearchStart:
		s.logger.Info("research started", append(fields, zap.String("query", evt.Query))...)
	case event.KindSearchProgress:
		s.logger.Debug("research progress",
			append(fields, zap.Float64("percent", evt.Percent), zap.String("stage", evt.StageLabel))...)
	case event.KindSearchDone:
		s.logger.Info("research done", append(fields, zap.Duration("dur", evt.Dur))...)
	case event.KindSearchError:
		s.logger.Warn("research error",
			append(fields, zap.String("message", evt.Message), zap.String("category", string(evt.Category)))...)
	}
	return nil
}

// Close flushes the logger.
func (s *Log) Close(context.Context) error {
	_ = s.logger.Sync()
	return nil
}
