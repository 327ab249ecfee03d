package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	once sync.Once
)

type appStats struct {
	ctx              context.Context
	shutdownCallback func(ctx context.Context) error
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
	heapAlloc        metric.Int64ObservableGauge
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		select {
		case <-stats.ctx.Done():
			_ = stats.shutdownCallback(context.Background())
		}
	}()
}

// InitAppStats publishes process level runtime metrics once per
// process. The shutdown callback is invoked after ctx is done, pass
// the one returned by the metrics exporter or nil.
func InitAppStats(ctx context.Context, name string, shutdown func(ctx context.Context) error) {
	once.Do(func() {
		builder := &strings.Builder{}
		builder.WriteString("dynalist/app")
		if len(strings.TrimSpace(name)) > 0 {
			builder.Write([]byte("/"))
			builder.WriteString(name)
		} else {
			builder.Write([]byte("/"))
			builder.WriteString("default")
		}
		name = builder.String()
		stats := &appStats{
			ctx:              ctx,
			shutdownCallback: shutdown,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](otel.Meter(
				name,
				metric.WithInstrumentationVersion(otelruntime.Version()),
			).Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					gNum := runtime.NumGoroutine()
					ob.Observe(int64(gNum))
					return nil
				}),
			),
			),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](otel.Meter(
				name,
				metric.WithInstrumentationVersion(otelruntime.Version()),
			).Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					procs := runtime.GOMAXPROCS(0)
					ob.Observe(int64(procs))
					return nil
				}),
			),
			),
			heapAlloc: lo.Must[metric.Int64ObservableGauge](otel.Meter(
				name,
				metric.WithInstrumentationVersion(otelruntime.Version()),
			).Int64ObservableGauge(
				"app.core.heap.alloc",
				metric.WithDescription(`The application heap bytes in use.`),
				metric.WithUnit("By"),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					memStats := &runtime.MemStats{}
					runtime.ReadMemStats(memStats)
					ob.Observe(int64(memStats.HeapAlloc))
					return nil
				}),
			),
			),
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}
