package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/uber-go/tally/v6"
	"github.com/uber-go/tally/v6/prometheus"
)

// Reporter bundles a root metrics scope with its Prometheus scrape handler.
type Reporter struct {
	Scope   tally.Scope
	Handler http.Handler
	closer  io.Closer
}

// NewReporter creates a Prometheus-backed root scope tagged with the service name.
func NewReporter(serviceName string) *Reporter {
	reporter := prometheus.NewReporter(prometheus.Options{})
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Tags:            map[string]string{"service": serviceName},
		CachedReporter:  reporter,
		Separator:       prometheus.DefaultSeparator,
		SanitizeOptions: &prometheus.DefaultSanitizerOpts,
	}, 10*time.Second)
	scope.Counter("service_started").Inc(1)
	return &Reporter{Scope: scope, Handler: reporter.HTTPHandler(), closer: closer}
}

// Close flushes and closes the root scope.
func (r *Reporter) Close() error {
	return r.closer.Close()
}

// EndpointMetrics defines an endpoint metrics.
type EndpointMetrics struct {
	Calls                 tally.Counter
	InvalidArgumentErrors tally.Counter
	NotFoundErrors        tally.Counter
	UpstreamErrors        tally.Counter
	InternalErrors        tally.Counter
	Successes             tally.Counter
	Latency               tally.Timer
}

// NewEndpointMetrics creates a new endpoint metrics.
func NewEndpointMetrics(scope tally.Scope, endpoint string) *EndpointMetrics {
	scope = scope.Tagged(map[string]string{
		"component": "handler",
		"endpoint":  endpoint,
	})
	return &EndpointMetrics{
		Calls: scope.Counter("calls"),
		InvalidArgumentErrors: scope.Tagged(map[string]string{
			"error": "invalid_argument",
		}).Counter("error"),
		NotFoundErrors: scope.Tagged(map[string]string{
			"error": "not_found",
		}).Counter("error"),
		UpstreamErrors: scope.Tagged(map[string]string{
			"error": "upstream",
		}).Counter("error"),
		InternalErrors: scope.Tagged(map[string]string{
			"error": "internal",
		}).Counter("error"),
		Successes: scope.Counter("success"),
		Latency:   scope.Timer("latency"),
	}
}
