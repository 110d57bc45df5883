package famalloc

import (
	"time"

	"github.com/hupe1980/famalloc/atomics"
)

const (
	// DefaultYieldAfter is the number of consecutive failed word swaps after
	// which a bit transition yields the processor before retrying.
	DefaultYieldAfter = 64

	// DefaultContentionWarnInterval bounds how often contention is logged.
	DefaultContentionWarnInterval = time.Second
)

type options struct {
	logger                 *Logger
	metricsCollector       MetricsCollector
	fd                     int
	flags                  atomics.Flags
	yieldAfter             int
	contentionWarnInterval time.Duration
}

func defaultOptions() options {
	return options{
		logger:                 NoopLogger(),
		metricsCollector:       NoopMetricsCollector{},
		fd:                     -1,
		yieldAfter:             DefaultYieldAfter,
		contentionWarnInterval: DefaultContentionWarnInterval,
	}
}

// Option configures New and Attach.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example:
//
//	bm, err := famalloc.New(provider, buf,
//	    famalloc.WithLogger(famalloc.NewTextLogger(slog.LevelDebug)),
//	)
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &famalloc.BasicMetricsCollector{}
//	bm, _ := famalloc.New(provider, buf, famalloc.WithMetricsCollector(metrics))
//	// ... use bm ...
//	stats := metrics.GetStats()
//	fmt.Printf("Conflict rate: %.2f\n", stats.ConflictRate())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithFd passes the file descriptor backing the buffer to the provider.
// The default is -1 (anonymous memory).
func WithFd(fd int) Option {
	return func(o *options) {
		o.fd = fd
	}
}

// WithFlags passes provider-specific registration flags.
func WithFlags(flags atomics.Flags) Option {
	return func(o *options) {
		o.flags = flags
	}
}

// WithYieldAfter makes a bit transition call runtime.Gosched after every n
// consecutive failed word swaps. n <= 0 disables yielding.
//
// Yielding never turns a retry into a conflict or the reverse; it only spaces
// out retries against unrelated bits of a busy word.
func WithYieldAfter(n int) Option {
	return func(o *options) {
		o.yieldAfter = n
	}
}

// WithContentionWarnInterval sets the minimum time between contention warnings.
func WithContentionWarnInterval(d time.Duration) Option {
	return func(o *options) {
		o.contentionWarnInterval = d
	}
}
