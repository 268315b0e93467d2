package metrics

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	apperrors "codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config) *service {
	t.Helper()

	collector, err := NewService(cfg, logger.New(&bytes.Buffer{}, logger.DebugLevel))
	require.NoError(t, err)
	t.Cleanup(func() { _ = collector.Close() })

	s, ok := collector.(*service)
	require.True(t, ok, "enabled config yields a prometheus collector")

	return s
}

func TestDisabledIsNoop(t *testing.T) {
	collector, err := NewService(DefaultConfig(), logger.New(&bytes.Buffer{}, logger.DebugLevel))
	require.NoError(t, err)

	_, ok := collector.(*noopCollector)
	assert.True(t, ok)
	require.NoError(t, collector.Record(context.Background(), &Snapshot{}))
	collector.RecordFault("sampling_fault")
	require.NoError(t, collector.Close())
}

func TestRecord(t *testing.T) {
	s := newTestService(t, Config{Enabled: true})

	err := s.Record(context.Background(), &Snapshot{
		Timestamp: time.Unix(1700000000, 0),
		Seq:       1,
		Devices:   map[string]int{"A": 100, "B": 901},
		Total:     1001,
		Threshold: 1000,
		Advisory:  &AdvisoryMetrics{Device: "B", Power: 901},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(901), testutil.ToFloat64(s.devicePower.WithLabelValues("B")))
	assert.Equal(t, float64(100), testutil.ToFloat64(s.devicePower.WithLabelValues("A")))
	assert.Equal(t, float64(1001), testutil.ToFloat64(s.totalPower))
	assert.Equal(t, float64(1000), testutil.ToFloat64(s.threshold))
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(s.lastTick))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.ticks))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.advisories.WithLabelValues("B")))

	s.RecordFault("aggregation_fault")
	s.RecordFault("aggregation_fault")
	assert.Equal(t, float64(2), testutil.ToFloat64(s.faults.WithLabelValues("aggregation_fault")))
}

func TestRecordRejectsNil(t *testing.T) {
	s := newTestService(t, Config{Enabled: true})

	err := s.Record(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, ErrInvalidMetrics))
}

func TestRecordCancelledContext(t *testing.T) {
	s := newTestService(t, Config{Enabled: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Record(ctx, &Snapshot{Total: 5})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, ErrOperationTimeout))
	assert.Equal(t, float64(0), testutil.ToFloat64(s.ticks))
}

func TestServeEndpoint(t *testing.T) {
	s := newTestService(t, Config{Enabled: true, ListenAddr: "127.0.0.1:0"})
	require.NoError(t, s.Record(context.Background(), &Snapshot{
		Devices: map[string]int{"Heater": 800},
		Total:   800,
	}))

	resp, err := http.Get("http://" + s.addr + metricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `energymon_device_power_watts{device="Heater"} 800`)
	assert.Contains(t, string(body), "energymon_total_power_watts 800")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "closing twice is a no-op")
}

func TestInvalidListenAddr(t *testing.T) {
	_, err := NewService(Config{Enabled: true, ListenAddr: "not-an-address"}, logger.New(&bytes.Buffer{}, logger.DebugLevel))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, ErrInvalidListenAddr))
}
