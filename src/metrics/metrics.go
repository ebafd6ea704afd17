// Package metrics contains the Prometheus metrics for the completion pipeline.
// They can be scraped from a long-running language server, or pushed to a
// pushgateway by one-shot invocations that don't live long enough to be scraped.
package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("metrics")

const namespace = "elm_complete"

// Outcome labels shared by the counters below.
const (
	OutcomeOK        = "ok"
	OutcomeSkipped   = "skipped"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

var (
	requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Completion requests handled, by outcome",
	}, []string{"outcome"})

	oracleRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oracle_runs_total",
		Help:      "Oracle invocations, by outcome",
	}, []string{"outcome"})

	oracleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "oracle_duration_seconds",
		Help:      "Wall time of oracle invocations",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_cache_lookups_total",
		Help:      "Project root cache lookups, by whether they hit",
	}, []string{"hit"})
)

func init() {
	prometheus.MustRegister(requests, oracleRuns, oracleDuration, cacheLookups)
}

// RecordRequest counts one completion request with the given outcome.
func RecordRequest(outcome string) {
	requests.WithLabelValues(outcome).Inc()
}

// RecordOracleRun counts one oracle invocation and observes how long it took.
func RecordOracleRun(outcome string, duration time.Duration) {
	oracleRuns.WithLabelValues(outcome).Inc()
	oracleDuration.Observe(duration.Seconds())
}

// RecordCacheLookup counts one project root cache lookup.
func RecordCacheLookup(hit bool) {
	cacheLookups.WithLabelValues(b(hit)).Inc()
}

func b(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

// A Server serves /metrics over HTTP.
type Server struct {
	srv  *http.Server
	addr net.Addr
}

// Serve starts serving metrics on the given address in the background.
func Serve(addr string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for metrics on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &Server{
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		addr: lis.Addr(),
	}
	go func() {
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed: %s", err)
		}
	}()
	log.Notice("Serving metrics on http://%s/metrics", s.addr)
	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Close stops the server immediately.
func (s *Server) Close() error {
	return s.srv.Close()
}

// Push sends the current metrics to a Prometheus pushgateway, giving up after the timeout.
func Push(url string, timeout time.Duration) error {
	c := make(chan error, 1)
	go func() {
		c <- push.New(url, namespace).Gatherer(prometheus.DefaultGatherer).Add()
	}()
	select {
	case err := <-c:
		if err != nil {
			return fmt.Errorf("pushing metrics to %s: %w", url, err)
		}
		log.Debug("Pushed metrics to %s", url)
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("metrics push to %s timed out", url)
	}
}
