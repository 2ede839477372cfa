package blocks

import "time"

// appConfig holds resolved App/Graph construction options.
type appConfig struct {
	terminal           TypeKey
	queueCapacity      int
	minInterval        time.Duration
	once               bool
	logger             Logger
	collectMetric      bool
	metricTimeInterval time.Duration
	asyncConcurrency   int
}

// Option configures an App (and the Graph it builds). Construct one with
// the With* functions below.
type Option interface {
	applyApp(*appConfig)
}

type optionFunc func(*appConfig)

func (f optionFunc) applyApp(c *appConfig) { f(c) }

// WithTerminalEvent designates the event type that ends a run. Any event
// whose concrete type is, or implements, T ends the run without being
// delivered to any processor. Pass a concrete struct type as T for an
// exact sentinel, or an interface type to accept any event in a family.
func WithTerminalEvent[T any]() Option {
	return optionFunc(func(c *appConfig) {
		c.terminal = typeKeyOfType[T]()
	})
}

// WithQueueCapacity bounds the internal event queue. Once full, a source's
// emission blocks the sync runtime's tick (backpressure), or is awaited by
// the async runtime's tick, rather than being dropped. A non-positive
// value (the default) leaves the queue unbounded.
func WithQueueCapacity(n int) Option {
	return optionFunc(func(c *appConfig) { c.queueCapacity = n })
}

// WithMinInterval sets a lower bound on the delay between ticks. It has no
// effect when WithOnce is set.
func WithMinInterval(d time.Duration) Option {
	return optionFunc(func(c *appConfig) { c.minInterval = d })
}

// WithOnce restricts a run to exactly one tick, regardless of queue state
// afterwards.
func WithOnce(once bool) Option {
	return optionFunc(func(c *appConfig) { c.once = once })
}

// WithLogger overrides the default structured logger. Passing nil installs
// NoopLogger.
func WithLogger(l Logger) Option {
	return optionFunc(func(c *appConfig) {
		if l == nil {
			l = NoopLogger{}
		}
		c.logger = l
	})
}

// WithMetrics enables per-processor latency aggregation: each processor
// invocation on a non-MetricSample event emits a MetricSample event, routed
// through the graph like any other event (see adapters/promexport for a
// consumer). interval controls
// nothing by itself — it is handed to consumers via App.MetricTimeInterval
// for their own aggregation windows.
func WithMetrics(interval time.Duration) Option {
	return optionFunc(func(c *appConfig) {
		c.collectMetric = true
		c.metricTimeInterval = interval
	})
}

// WithAsyncConcurrency bounds how many blocking blocks RunAsync may
// dispatch to its helper executor concurrently. Defaults to
// runtime.GOMAXPROCS(0) if unset or non-positive.
func WithAsyncConcurrency(n int) Option {
	return optionFunc(func(c *appConfig) { c.asyncConcurrency = n })
}

// blockConfig holds resolved per-block construction options.
type blockConfig struct {
	name         string
	release      func() error
	sumInputs    []TypeKey
	sumOutputs   []TypeKey
	sumInputSet  bool
	sumOutputSet bool
}

// BlockOption configures a block at construction time. Construct one with
// the With*/Sum/Emits functions below.
type BlockOption interface {
	applyBlock(*blockConfig)
}

type blockOptionFunc func(*blockConfig)

func (f blockOptionFunc) applyBlock(c *blockConfig) { f(c) }

// WithName sets a block's display name, used in logs and error messages.
// Defaults to a value derived from the handler function's reflected name.
func WithName(name string) BlockOption {
	return blockOptionFunc(func(c *blockConfig) { c.name = name })
}

// WithRelease registers a cleanup action to run once at shutdown.
func WithRelease(fn func() error) BlockOption {
	return blockOptionFunc(func(c *blockConfig) { c.release = fn })
}

// Sum decomposes a processor's declared input type into explicit member
// types, registering the processor under each member's TypeKey instead of
// under the (necessarily interface) input type itself. Pass a zero value
// of each member type. Use this when producers of the individual member
// types should see the processor as a direct consumer for wiring-warning
// purposes; omit it to rely on ordinary interface/subtype dispatch
// (see Graph's resolution rules). Calling Sum with zero members is a
// construction-time WiringError: it declares a processor with no input
// event types at all.
func Sum(members ...Event) BlockOption {
	keys := make([]TypeKey, len(members))
	for i, m := range members {
		keys[i] = TypeKeyOf(m)
	}
	return blockOptionFunc(func(c *blockConfig) {
		c.sumInputs = keys
		c.sumInputSet = true
	})
}

// Emits decomposes a block's declared output type into explicit member
// types, for wiring-warning accuracy when the output type parameter is an
// interface implemented by several concrete event types. Calling Emits
// with zero members is a construction-time WiringError: it declares a
// block with no output event types at all.
func Emits(members ...Event) BlockOption {
	keys := make([]TypeKey, len(members))
	for i, m := range members {
		keys[i] = TypeKeyOf(m)
	}
	return blockOptionFunc(func(c *blockConfig) {
		c.sumOutputs = keys
		c.sumOutputSet = true
	})
}

func resolveAppConfig(opts []Option) *appConfig {
	// logger is left nil here, not defaulted to NoopLogger: NewApp needs to
	// tell "WithLogger was never called" apart from an explicit
	// WithLogger(NoopLogger{})/WithLogger(nil) opt-out, and only the former
	// gets blogglog's default installed.
	c := &appConfig{
		asyncConcurrency: 0,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyApp(c)
	}
	return c
}

func resolveBlockConfig(opts []BlockOption) *blockConfig {
	c := &blockConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyBlock(c)
	}
	return c
}
