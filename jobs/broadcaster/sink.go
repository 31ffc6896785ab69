package broadcaster

import (
	"context"
	"encoding/json"

	"matchbook/infra/logger"
)

// Sink delivers encoded reports. infra/kafka provides the broker-backed
// implementations.
type Sink interface {
	Send(ctx context.Context, key, value []byte) error
	Close() error
}

// LogSink writes each report to the logger instead of a broker.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.Component("fills")}
}

func (s *LogSink) Send(ctx context.Context, key, value []byte) error {
	if json.Valid(value) {
		s.log.InfoContext(ctx, "fill report", "key", string(key), "report", json.RawMessage(value))
		return nil
	}
	s.log.InfoContext(ctx, "fill report", "key", string(key), "bytes", len(value))
	return nil
}

func (s *LogSink) Close() error { return nil }

// DiscardSink drops everything.
type DiscardSink struct{}

func (DiscardSink) Send(context.Context, []byte, []byte) error { return nil }
func (DiscardSink) Close() error                                 { return nil }
