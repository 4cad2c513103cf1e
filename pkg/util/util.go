package util

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
)

// ConvertList maps every element of in through convert.
func ConvertList[A, B any](in []A, convert func(A) B) []B {
	out := make([]B, 0, len(in))
	for _, a := range in {
		out = append(out, convert(a))
	}
	return out
}

// SliceIncludes reports whether value is in values. A nil or empty slice never matches.
func SliceIncludes[T comparable](values []T, value T) bool {
	return len(values) > 0 && slices.Contains(values, value)
}

// FirstNonEmpty returns the first non-empty string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

type RestyOptions struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// RetryAllMethods retries non idempotent requests too. Off by default.
	RetryAllMethods bool
}

// NewRestyClient returns a JSON client that retries on the retryablehttp
// default policy. Only GET requests are retried unless RetryAllMethods is set.
func NewRestyClient(opts RestyOptions) *resty.Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	c := resty.
		New().
		SetBaseURL(opts.BaseURL).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetLogger(nopLogger{}).
		SetTimeout(opts.Timeout).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil {
				return false
			}
			if !opts.RetryAllMethods && r.Request.Method != http.MethodGet {
				return false
			}
			retry, _ := retryablehttp.DefaultRetryPolicy(r.Request.Context(), r.RawResponse, err)
			return retry
		})
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal
	return c
}

// Ptr returns a pointer to a copy of t.
func Ptr[T any](t T) *T {
	return &t
}

// Val dereferences t, returning the zero value for nil.
func Val[T any](t *T) T {
	if t == nil {
		return *new(T)
	}
	return *t
}

// requestBuckets spans 0.5ms to 10s. Backend and knowledge calls sit at the top end.
var requestBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// GetHistogramVec registers a latency histogram or returns the one already registered under name.
func GetHistogramVec(name string, labels ...string) (*prometheus.HistogramVec, error) {
	return register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    "Latency in seconds.",
		Buckets: requestBuckets,
	}, labels))
}

// GetCounterVec registers a counter or returns the one already registered under name.
func GetCounterVec(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	return register(prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels))
}

// register adds c to the default registry. Tests and repeated server builds
// share the process registry, so a collector registered earlier is reused.
func register[C prometheus.Collector](c C) (C, error) {
	err := prometheus.Register(c)
	if err == nil {
		return c, nil
	}
	var registered prometheus.AlreadyRegisteredError
	if errors.As(err, &registered) {
		if existing, ok := registered.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register collector: %w", err)
}
