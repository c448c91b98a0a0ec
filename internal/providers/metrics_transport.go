package providers

import (
	"net/http"
	"strings"
	"time"
)

type metricsTransport struct {
	next    http.RoundTripper
	metrics MetricsProviderInterface
}

func (t *metricsTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(r)

	status := 0
	if err == nil {
		status = resp.StatusCode
	}
	endpoint := r.Method + " " + normalizeEndpoint(r.URL.Path)
	t.metrics.IncRequestsTotal(endpoint, status)
	t.metrics.ObserveRequestDuration(endpoint, time.Since(start))
	return resp, err
}

// MetricsTransport instruments every outgoing request. A nil next uses
// http.DefaultTransport.
func MetricsTransport(metrics MetricsProviderInterface, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &metricsTransport{next: next, metrics: metrics}
}

// normalizeEndpoint collapses numeric path segments so item URIs share
// one label.
func normalizeEndpoint(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
