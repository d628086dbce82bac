package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"RESTAURANT_APP_NAME",
	"RESTAURANT_APP_ENV",
	"RESTAURANT_APP_PORT",
	"RESTAURANT_DATABASE_HOST",
	"RESTAURANT_DATABASE_PORT",
	"RESTAURANT_DATABASE_USER",
	"RESTAURANT_DATABASE_PASSWORD",
	"RESTAURANT_DATABASE_DBNAME",
	"RESTAURANT_DATABASE_SSLMODE",
	"RESTAURANT_DATABASE_MAX_OPEN_CONNS",
	"RESTAURANT_DATABASE_MAX_IDLE_CONNS",
	"RESTAURANT_REDIS_ENABLED",
	"RESTAURANT_REDIS_CACHE_TTL",
	"RESTAURANT_STORAGE_ENABLED",
	"RESTAURANT_STORAGE_BUCKET",
	"RESTAURANT_STORAGE_PUBLIC_BASE_URL",
	"RESTAURANT_KAFKA_ENABLED",
	"RESTAURANT_KAFKA_TOPIC",
	"RESTAURANT_BILLING_DELETION_GRACE_DAYS",
	"RESTAURANT_BILLING_TIME_ZONE",
	"RESTAURANT_TELEMETRY_SAMPLING_RATIO",
	"RESTAURANT_TELEMETRY_DB_LOG_FULL_SQL",
	"RESTAURANT_HTTP_RATE_LIMIT",
	"RESTAURANT_HTTP_RATE_LIMIT_WINDOW",
	"RESTAURANT_TELEMETRY_PROFILING_ENABLED",
	"RESTAURANT_TELEMETRY_PROFILING_SERVER_ADDRESS",
	"RESTAURANT_TELEMETRY_PROFILING_TYPES",
}

// clearEnv unsets every key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "restaurant-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "restaurant", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
		assert.Equal(t, DefaultImageBaseURL, cfg.Storage.PublicBaseURL)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiry)
		assert.Equal(t, "restaurant.events", cfg.Kafka.Topic)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 14, cfg.Billing.DeletionGraceDays)
		assert.Zero(t, cfg.HTTP.RateLimit)
		assert.Equal(t, time.Minute, cfg.HTTP.RateLimitWindow)
	})

	t.Run("reads rate limit settings", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_HTTP_RATE_LIMIT", "120")
		t.Setenv("RESTAURANT_HTTP_RATE_LIMIT_WINDOW", "10s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 120, cfg.HTTP.RateLimit)
		assert.Equal(t, 10*time.Second, cfg.HTTP.RateLimitWindow)

		t.Setenv("RESTAURANT_HTTP_RATE_LIMIT", "-1")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit")
	})

	t.Run("reads profiling settings", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Telemetry.ProfilingEnabled)
		assert.Equal(t, "http://localhost:4040", cfg.Telemetry.ProfilingServerAddress)

		t.Setenv("RESTAURANT_TELEMETRY_PROFILING_ENABLED", "true")
		t.Setenv("RESTAURANT_TELEMETRY_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")
		t.Setenv("RESTAURANT_TELEMETRY_PROFILING_TYPES", "cpu goroutines")

		cfg, err = Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.ProfilingEnabled)
		assert.Equal(t, "http://pyroscope:4040", cfg.Telemetry.ProfilingServerAddress)
		assert.Equal(t, []string{"cpu", "goroutines"}, cfg.Telemetry.ProfilingTypes)
	})

	t.Run("loads values from environment variables with RESTAURANT prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_APP_NAME", "test-app")
		t.Setenv("RESTAURANT_APP_ENV", "testing")
		t.Setenv("RESTAURANT_APP_PORT", "9000")
		t.Setenv("RESTAURANT_DATABASE_HOST", "testdb.local")
		t.Setenv("RESTAURANT_DATABASE_PORT", "5433")
		t.Setenv("RESTAURANT_DATABASE_USER", "testuser")
		t.Setenv("RESTAURANT_DATABASE_PASSWORD", "testpass")
		t.Setenv("RESTAURANT_DATABASE_DBNAME", "testdb")
		t.Setenv("RESTAURANT_DATABASE_SSLMODE", "require")
		t.Setenv("RESTAURANT_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("RESTAURANT_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("RESTAURANT_REDIS_ENABLED", "true")
		t.Setenv("RESTAURANT_REDIS_CACHE_TTL", "30s")
		t.Setenv("RESTAURANT_KAFKA_TOPIC", "menu.events")
		t.Setenv("RESTAURANT_BILLING_DELETION_GRACE_DAYS", "7")
		t.Setenv("RESTAURANT_BILLING_TIME_ZONE", "Asia/Ho_Chi_Minh")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
		assert.Equal(t, "menu.events", cfg.Kafka.Topic)
		assert.Equal(t, 7, cfg.Billing.DeletionGraceDays)
		assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Billing.Location().String())
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("RESTAURANT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set"
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("requires bucket when storage is enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket is required")
	})

	t.Run("rejects unknown billing time zone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_BILLING_TIME_ZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "billing.time_zone")
	})

	t.Run("rejects negative grace period", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_BILLING_DELETION_GRACE_DAYS", "-3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deletion_grace_days cannot be negative")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESTAURANT_APP_ENV", "production")
		t.Setenv("RESTAURANT_DATABASE_PASSWORD", "secure-password")
		t.Setenv("RESTAURANT_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("RESTAURANT_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("RESTAURANT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("forbids full SQL logging in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("RESTAURANT_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql must be false in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestBillingConfig_Location(t *testing.T) {
	t.Run("falls back to local zone when unset", func(t *testing.T) {
		cfg := BillingConfig{}
		assert.Equal(t, time.Local, cfg.Location())
	})

	t.Run("falls back to local zone when invalid", func(t *testing.T) {
		cfg := BillingConfig{TimeZone: "Nowhere/Special"}
		assert.Equal(t, time.Local, cfg.Location())
	})

	t.Run("loads named zone", func(t *testing.T) {
		cfg := BillingConfig{TimeZone: "UTC"}
		assert.Equal(t, "UTC", cfg.Location().String())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
