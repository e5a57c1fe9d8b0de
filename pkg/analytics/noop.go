package analytics

import (
	"context"

	"github.com/swiftconvert/server/pkg/interfaces"
)

// NoopSink discards all events. Used when analytics has no database path
// configured and in tests.
type NoopSink struct{}

var _ interfaces.AnalyticsSink = (*NoopSink)(nil)

func (NoopSink) LogConversion(ctx context.Context, ev interfaces.ConversionEvent) error { return nil }

func (NoopSink) LogError(ctx context.Context, ev interfaces.ErrorEvent) error { return nil }

func (NoopSink) Insights(ctx context.Context) (*interfaces.Insights, error) {
	return &interfaces.Insights{}, nil
}

func (NoopSink) Close() error { return nil }
