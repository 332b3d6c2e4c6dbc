package hclust

import (
	"log/slog"
	"time"

	"github.com/hupe1980/hclust/blobstore"
	"github.com/hupe1980/hclust/resource"
)

// DefaultProgressInterval is the minimum time between progress log lines.
const DefaultProgressInterval = 5 * time.Second

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	matrixStore      blobstore.BlobStore
	resources        *resource.Controller
	sinks            []Sink
	progressInterval time.Duration
}

// Option configures a Clusterer.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hclust.BasicMetricsCollector{}
//	c := hclust.New(hclust.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.RunCount, stats.RunAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMatrixStore sets the store used by Config.LoadMatrix and
// Config.SaveMatrix.
func WithMatrixStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.matrixStore = store
	}
}

// WithResourceController bounds matrix memory, concurrent runs and matrix
// upload throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithSinks appends output sinks that receive every successful Result.
func WithSinks(sinks ...Sink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, sinks...)
	}
}

// WithProgressInterval sets the minimum time between progress log lines of
// the matrix build. A value <= 0 disables progress logging.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		progressInterval: DefaultProgressInterval,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
