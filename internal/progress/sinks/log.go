package sinks

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/zambian-names/internal/progress"
)

// LogSink reports progress as structured log lines, one per event.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("run_id", evt.RunUUID().String()),
			zap.String("stage", string(evt.Stage)),
		}
		switch evt.Stage {
		case progress.StageRunStart:
			s.logger.Info("scrape run started", fields...)
		case progress.StageRunDone:
			fields = append(fields, zap.Duration("dur", evt.Dur), zap.Int("items", evt.Items))
			s.logger.Info("scrape run finished", fields...)
		case progress.StagePartitionStart:
			fields = append(fields, zap.String("key", evt.Key), zap.String("url", evt.Address))
			s.logger.Info("fetching "+strings.ToUpper(evt.Key)+" names", fields...)
		case progress.StagePartitionDone:
			fields = append(fields,
				zap.String("key", evt.Key),
				zap.String("status", evt.Status),
				zap.Int("items", evt.Items),
				zap.Duration("dur", evt.Dur),
			)
			if evt.Note != "" {
				fields = append(fields, zap.String("note", evt.Note))
			}
			s.logger.Info("partition finished", fields...)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
