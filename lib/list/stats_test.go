package list

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

func withListStatsInit(interval time.Duration) func(context.Context) error {
	exp, err := stdoutmetric.New(
		stdoutmetric.WithWriter(os.Stdout),
	)
	if err != nil {
		panic(err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(
		metric.NewPeriodicReader(exp, metric.WithInterval(interval)),
	))
	otel.SetMeterProvider(mp)
	return mp.Shutdown
}

func TestNodeArenaStatsSmoke(t *testing.T) {
	shutdown := withListStatsInit(time.Second)
	defer func() {
		require.NoError(t, shutdown(context.Background()))
	}()

	na := NewNodeArena[int](WithNodeArenaStats[int]())
	l := NewXorList(na)
	require.NoError(t, l.Extend(1, 2, 3, 4, 5))

	il, err := NewIList(na)
	require.NoError(t, err)
	h, err := il.PushBackValue(6)
	require.NoError(t, err)

	// 5 xor nodes plus the sentinel and one intrusive node
	assert.EqualValues(t, 7, na.Live())

	e := l.PopFront()
	require.NotNil(t, e)
	e.Destroy()

	h.Release()
	il.Destroy()
	l.Clear()
	require.NoError(t, na.Close())
}
