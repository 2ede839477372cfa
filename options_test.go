package blocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type terminal struct{}

func TestResolveAppConfigDefaults(t *testing.T) {
	cfg := resolveAppConfig(nil)
	// nil, not NoopLogger: NewApp distinguishes "never called WithLogger"
	// (substitute blogglog's default) from an explicit opt-out.
	assert.Nil(t, cfg.logger)
	assert.False(t, cfg.once)
	assert.False(t, cfg.collectMetric)
}

func TestWithTerminalEventSetsTypeKey(t *testing.T) {
	cfg := resolveAppConfig([]Option{WithTerminalEvent[terminal]()})
	assert.Equal(t, typeKeyOfType[terminal](), cfg.terminal)
}

func TestWithQueueCapacityMinIntervalOnce(t *testing.T) {
	cfg := resolveAppConfig([]Option{
		WithQueueCapacity(10),
		WithMinInterval(time.Second),
		WithOnce(true),
	})
	assert.Equal(t, 10, cfg.queueCapacity)
	assert.Equal(t, time.Second, cfg.minInterval)
	assert.True(t, cfg.once)
}

func TestWithLoggerNilInstallsNoop(t *testing.T) {
	cfg := resolveAppConfig([]Option{WithLogger(nil)})
	assert.IsType(t, NoopLogger{}, cfg.logger)
}

func TestWithMetricsSetsIntervalAndFlag(t *testing.T) {
	cfg := resolveAppConfig([]Option{WithMetrics(5 * time.Second)})
	assert.True(t, cfg.collectMetric)
	assert.Equal(t, 5*time.Second, cfg.metricTimeInterval)
}

func TestWithAsyncConcurrency(t *testing.T) {
	cfg := resolveAppConfig([]Option{WithAsyncConcurrency(4)})
	assert.Equal(t, 4, cfg.asyncConcurrency)
}

func TestResolveBlockConfigNameAndRelease(t *testing.T) {
	called := false
	cfg := resolveBlockConfig([]BlockOption{
		WithName("my-block"),
		WithRelease(func() error { called = true; return nil }),
	})
	assert.Equal(t, "my-block", cfg.name)
	cfg.release()
	assert.True(t, called)
}
