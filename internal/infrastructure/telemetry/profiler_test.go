package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{ServerAddress: "http://localhost:4040"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     ProfilerConfig{Enabled: true, ApplicationName: "restaurant-backend"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			cfg:     ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
		{
			name: "unknown profile type",
			cfg: ProfilerConfig{
				Enabled:         true,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "restaurant-backend",
				ProfileTypes:    []string{"cpu", "heap"},
			},
			wantErr: `unknown profile type "heap"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfiler(tt.cfg, zap.NewNop())
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseProfileTypes(t *testing.T) {
	defaults, err := ParseProfileTypes(nil)
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}, defaults)

	types, err := ParseProfileTypes([]string{" CPU", "mutex_count", "cpu", "block_duration"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileBlockDuration,
	}, types)
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("bill labels are visible inside the callback", func(t *testing.T) {
		var op, bill string
		WithProfilingLabels(context.Background(), BillLabels("bill.pay", "b-42"), func(ctx context.Context) {
			op, _ = pprof.Label(ctx, ProfilingLabelOperation)
			bill, _ = pprof.Label(ctx, ProfilingLabelBillID)
		})
		assert.Equal(t, "bill.pay", op)
		assert.Equal(t, "b-42", bill)
	})

	t.Run("empty labels pass the context through", func(t *testing.T) {
		parent := context.Background()
		called := false
		WithProfilingLabels(parent, map[string]string{"operation": "", "": "x"}, func(ctx context.Context) {
			called = true
			assert.Equal(t, parent, ctx)
		})
		assert.True(t, called)
	})

	t.Run("long values are truncated", func(t *testing.T) {
		var got string
		WithProfilingLabels(context.Background(), map[string]string{"operation": strings.Repeat("a", 300)}, func(ctx context.Context) {
			got, _ = pprof.Label(ctx, ProfilingLabelOperation)
		})
		assert.Len(t, got, MaxLabelValueLength)
	})
}

func TestLabelPairs_Sorted(t *testing.T) {
	pairs := labelPairs(map[string]string{"operation": "bill.pay", "bill_id": "b-1", "skip": ""})
	assert.Equal(t, []string{"bill_id", "b-1", "operation", "bill.pay"}, pairs)
}

func TestTracerProvider_EnableSpanProfiles(t *testing.T) {
	ctx := context.Background()

	disabled, err := NewTracerProvider(ctx, Config{ServiceName: "restaurant-backend"}, zap.NewNop())
	require.NoError(t, err)
	disabled.EnableSpanProfiles()
	assert.False(t, disabled.SpanProfilesEnabled())

	tp, err := NewTracerProvider(ctx, Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1,
		ServiceName:       "restaurant-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithCancel(ctx)
		cancel()
		_ = tp.Shutdown(shutdownCtx)
	})

	tp.EnableSpanProfiles()
	tp.EnableSpanProfiles()
	assert.True(t, tp.SpanProfilesEnabled())

	_, span := tp.Tracer("test").Start(ctx, "bill.pay")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
