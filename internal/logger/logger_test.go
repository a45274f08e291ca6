package logger

import (
	"path/filepath"
	"testing"

	"github.com/deppfellow/rentals-api/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, tracelog.LogLevelDebug, GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, tracelog.LogLevelError, GetPgxTraceLogLevel(zerolog.ErrorLevel))
	assert.Equal(t, tracelog.LogLevelNone, GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestLoggerServiceWithoutLicense(t *testing.T) {
	service := NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, service.GetApplication())

	// must not panic without an agent
	service.RecordCustomEvent("Test", map[string]interface{}{"k": "v"})
	service.Shutdown()

	var nilService *LoggerService
	assert.Nil(t, nilService.GetApplication())
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"
	cfg.Logging.File = filepath.Join(t.TempDir(), "rentals.log")

	logger := NewLogger(cfg)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestWithTraceContextNilTransaction(t *testing.T) {
	base := zerolog.Nop()
	assert.Equal(t, base, WithTraceContext(base, nil))
}

func TestNewRelicOptions(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.ServiceName = "rentals-api"
	cfg.NewRelic.LicenseKey = "0123456789012345678901234567890123456789"
	cfg.NewRelic.DistributedTracingEnabled = true
	cfg.NewRelic.AppLogForwardingEnabled = false

	var nrCfg newrelic.Config
	for _, opt := range newRelicOptions(cfg) {
		opt(&nrCfg)
	}

	assert.Equal(t, "rentals-api", nrCfg.AppName)
	assert.Equal(t, cfg.NewRelic.LicenseKey, nrCfg.License)
	assert.True(t, nrCfg.DistributedTracer.Enabled)
	assert.False(t, nrCfg.ApplicationLogging.Forwarding.Enabled)
	assert.True(t, nrCfg.CustomInsightsEvents.Enabled)
}
