package list

import (
	"context"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	NodeArenaStatsName = "dynalist/arena"
)

type nodeArenaStats struct {
	allocCount    metric.Int64Counter
	reclaimCount  metric.Int64Counter
	finalizeCount metric.Int64Counter
	liveNodes     metric.Int64ObservableGauge
}

func (stats *nodeArenaStats) recordAlloc(shape string) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("node.shape", shape),
	)
	stats.allocCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func (stats *nodeArenaStats) recordReclaim(shape string) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("node.shape", shape),
	)
	stats.reclaimCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func (stats *nodeArenaStats) recordFinalize() {
	if stats == nil {
		return
	}
	stats.finalizeCount.Add(context.Background(), 1)
}

func newNodeArenaStats(live func() (intrusive, xor int64)) *nodeArenaStats {
	stats := &nodeArenaStats{
		allocCount: lo.Must[metric.Int64Counter](otel.Meter(NodeArenaStatsName).
			Int64Counter(
				"arena.node.alloc.count",
				metric.WithDescription("The number of nodes allocated from the arena."),
			),
		),
		reclaimCount: lo.Must[metric.Int64Counter](otel.Meter(NodeArenaStatsName).
			Int64Counter(
				"arena.node.reclaim.count",
				metric.WithDescription("The number of node slots given back to the arena."),
			),
		),
		finalizeCount: lo.Must[metric.Int64Counter](otel.Meter(NodeArenaStatsName).
			Int64Counter(
				"arena.node.finalize.count",
				metric.WithDescription("The number of elements destroyed through the arena finalizer."),
			),
		),
	}
	stats.liveNodes = lo.Must[metric.Int64ObservableGauge](otel.Meter(NodeArenaStatsName).
		Int64ObservableGauge(
			"arena.node.live",
			metric.WithDescription("The number of nodes currently live in the arena, by shape."),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				intrusive, xor := live()
				ob.Observe(intrusive, metric.WithAttributeSet(attribute.NewSet(
					attribute.String("node.shape", intrusiveShape),
				)))
				ob.Observe(xor, metric.WithAttributeSet(attribute.NewSet(
					attribute.String("node.shape", xorShape),
				)))
				return nil
			}),
		),
	)
	return stats
}
