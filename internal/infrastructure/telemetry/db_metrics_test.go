package telemetry

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newDBMeter(t *testing.T, scope string) (*sdkmetric.ManualReader, *DBMetrics, func(cfg DBMetricsConfig) *DBMetrics) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	meter := provider.Meter(scope)
	build := func(cfg DBMetricsConfig) *DBMetrics {
		m, err := NewDBMetrics(meter, cfg, zap.NewNop())
		require.NoError(t, err)
		return m
	}

	return reader, build(DefaultDBMetricsConfig()), build
}

func newMockGormDB(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mockDB
}

func findMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())
	meter := provider.Meter("db.metrics.new")

	t.Run("creates all instruments", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, metrics)

		assert.NotNil(t, metrics.poolConnections)
		assert.NotNil(t, metrics.poolConnectionsMax)
		assert.NotNil(t, metrics.queryTotal)
		assert.NotNil(t, metrics.queryDuration)
		assert.NotNil(t, metrics.slowQueryTotal)
	})

	t.Run("zero config falls back to defaults", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{}, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, 200*time.Millisecond, metrics.config.SlowQueryThreshold)
		assert.Equal(t, 15*time.Second, metrics.config.PoolStatsInterval)
	})

	t.Run("nil logger replaced with nop", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), nil)
		require.NoError(t, err)
		require.NotNil(t, metrics.logger)
	})
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("records count and duration", func(t *testing.T) {
		reader, metrics, _ := newDBMeter(t, "db.query.basic")

		metrics.RecordQuery(ctx, "SELECT", "route_records", 50*time.Millisecond, nil)

		rm := collect(t, reader)
		assert.True(t, findMetric(rm, "db_query_total"))
		assert.True(t, findMetric(rm, "db_query_duration_seconds"))
	})

	t.Run("slow query above threshold counted", func(t *testing.T) {
		reader, _, build := newDBMeter(t, "db.query.slow")
		metrics := build(DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		})

		metrics.RecordQuery(ctx, "SELECT", "ledger_movements", 250*time.Millisecond, nil)

		assert.True(t, findMetric(collect(t, reader), "db_slow_query_total"))
	})

	t.Run("fast query leaves slow counter at zero", func(t *testing.T) {
		reader, _, build := newDBMeter(t, "db.query.fast")
		metrics := build(DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
		})

		metrics.RecordQuery(ctx, "SELECT", "route_records", 50*time.Millisecond, nil)

		rm := collect(t, reader)
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name == "db_slow_query_total" {
					sum := m.Data.(metricdata.Sum[int64])
					for _, dp := range sum.DataPoints {
						assert.Equal(t, int64(0), dp.Value)
					}
				}
			}
		}
	})

	t.Run("operation case is normalized", func(t *testing.T) {
		reader, metrics, _ := newDBMeter(t, "db.query.case")

		metrics.RecordQuery(ctx, "select", "route_records", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "Insert", "route_records", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "UPDATE", "route_records", 10*time.Millisecond, nil)

		assert.True(t, findMetric(collect(t, reader), "db_query_total"))
	})

	t.Run("empty operation recorded as unknown", func(t *testing.T) {
		reader, metrics, _ := newDBMeter(t, "db.query.noop")

		metrics.RecordQuery(ctx, "", "route_records", 10*time.Millisecond, nil)

		collect(t, reader)
	})

	t.Run("slow query with empty table still recorded", func(t *testing.T) {
		reader, _, build := newDBMeter(t, "db.query.notable")
		metrics := build(DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 50 * time.Millisecond,
		})

		metrics.RecordQuery(ctx, "SELECT", "", 100*time.Millisecond, nil)

		assert.True(t, findMetric(collect(t, reader), "db_slow_query_total"))
	})
}

func TestDBMetrics_PoolStats(t *testing.T) {
	t.Run("collects pool gauges on the configured interval", func(t *testing.T) {
		reader, _, build := newDBMeter(t, "db.pool.collect")
		metrics := build(DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		})

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(100 * time.Millisecond)
		metrics.Stop()

		rm := collect(t, reader)
		assert.True(t, findMetric(rm, "db_pool_connections_max"))
		assert.True(t, findMetric(rm, "db_pool_connections"))
	})

	t.Run("no-op without an sql handle", func(t *testing.T) {
		_, _, build := newDBMeter(t, "db.pool.nodb")
		metrics := build(DefaultDBMetricsConfig())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(50 * time.Millisecond)
		metrics.Stop()
	})

	t.Run("context cancellation stops the collector", func(t *testing.T) {
		_, _, build := newDBMeter(t, "db.pool.cancel")
		metrics := build(DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: time.Second,
		})

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		metrics.StartPoolStatsCollection(ctx)
		cancel()

		metrics.Stop()
	})
}

func TestDBMetrics_Stop(t *testing.T) {
	_, _, build := newDBMeter(t, "db.stop")
	metrics := build(DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 100 * time.Millisecond,
	})

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	metrics.SetSQLDB(mockDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	metrics.StartPoolStatsCollection(ctx)

	done := make(chan struct{})
	go func() {
		metrics.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked for too long")
	}

	// repeated stops are safe
	assert.NotPanics(t, func() { metrics.Stop() })
	assert.NotPanics(t, func() { metrics.Stop() })
}

func TestDBMetricsPlugin(t *testing.T) {
	_, metrics, _ := newDBMeter(t, "db.plugin")

	plugin := NewDBMetricsPlugin(metrics, zap.NewNop())
	assert.Equal(t, "db_metrics", plugin.Name())

	gormDB, _ := newMockGormDB(t)
	require.NoError(t, plugin.Initialize(gormDB))
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT * FROM route_records", "SELECT"},
		{"select id from route_records", "SELECT"},
		{"  SELECT id FROM ledger_movements", "SELECT"},
		{"INSERT INTO deliveries (quantity) VALUES (12)", "INSERT"},
		{"insert into deliveries values (1)", "INSERT"},
		{"UPDATE route_records SET status = 'CLOSED'", "UPDATE"},
		{"update route_records set status = 'CLOSED'", "UPDATE"},
		{"DELETE FROM anomalies WHERE id = 1", "DELETE"},
		{"delete from anomalies", "DELETE"},
		{"CREATE TABLE route_records", "OTHER"},
		{"DROP TABLE route_records", "OTHER"},
		{"", "OTHER"},
		{"TRUNCATE TABLE ledger_movements", "OTHER"},
	}

	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectOperationType(tc.sql))
		})
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	logger := zap.NewNop()

	t.Run("nil when disabled", func(t *testing.T) {
		gormDB, _ := newMockGormDB(t)

		metrics, err := RegisterDBMetrics(gormDB, nil, DBMetricsConfig{Enabled: false}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("nil without a meter provider", func(t *testing.T) {
		gormDB, _ := newMockGormDB(t)

		metrics, err := RegisterDBMetrics(gormDB, nil, DBMetricsConfig{Enabled: true}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("registers when enabled", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		sdkProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer sdkProvider.Shutdown(context.Background())

		mp := &MeterProvider{
			provider: sdkProvider,
			logger:   logger,
			config:   MetricsConfig{Enabled: true},
		}

		gormDB, _ := newMockGormDB(t)

		metrics, err := RegisterDBMetrics(gormDB, mp, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
			PoolStatsInterval:  15 * time.Second,
		}, logger)
		require.NoError(t, err)
		require.NotNil(t, metrics)
	})
}

func TestDBMetrics_ConcurrentRecordQuery(t *testing.T) {
	ctx := context.Background()
	reader, metrics, _ := newDBMeter(t, "db.concurrent")

	operations := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}
	tables := []string{"route_records", "deliveries", "ledger_movements", "anomalies"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			metrics.RecordQuery(ctx, operations[i%4], tables[i%4], time.Duration(i)*time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	assert.True(t, findMetric(collect(t, reader), "db_query_total"))
}

func TestDBMetrics_WithMeter(t *testing.T) {
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	meter := provider.Meter("fleet.db.meter")
	metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	metrics.RecordQuery(ctx, "SELECT", "route_records", 10*time.Millisecond, nil)

	rm := collect(t, reader)
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name == "fleet.db.meter" {
			assert.NotEmpty(t, sm.Metrics)
			return
		}
	}
	t.Error("metrics not found under the expected meter scope")
}
