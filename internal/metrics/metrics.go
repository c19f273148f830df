package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

const (
	ClientCompletedCount = "http/client/completed_count"
	ServerCompletedCount = "http/server/completed_count"
)

var (
	methodKey = attribute.Key("method")
	statusKey = attribute.Key("status")
)

// Setup installs a Prometheus exporter as the global meter provider. The
// exporter serves the scrape endpoint.
func Setup() (*prometheus.Exporter, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, err
	}
	global.SetMeterProvider(exporter.MeterProvider())

	return exporter, nil
}

// Scrape renders the current exposition of a scrape handler such as the
// exporter returned by Setup.
func Scrape(h http.Handler) (string, error) {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		return "", fmt.Errorf("scrape: status %d", w.Code)
	}

	return w.Body.String(), nil
}

// Meter returns the named meter of the global provider.
func Meter(name string) metric.Meter {
	return global.Meter(name)
}

// Transport counts completed client requests by method and status. Requests
// that never got a response are counted with status "error".
type Transport struct {
	next    http.RoundTripper
	counter metric.Int64Counter
}

func NewTransport(next http.RoundTripper, meter metric.Meter) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}

	return &Transport{
		next: next,
		counter: metric.Must(meter).NewInt64Counter(
			ClientCompletedCount,
			metric.WithDescription("Count of completed requests, by HTTP method and response status"),
		),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.counter.Add(req.Context(), 1, methodKey.String(req.Method), statusKey.String(status))

	return resp, err
}

// Middleware counts served requests by method and status.
func Middleware(meter metric.Meter) func(http.Handler) http.Handler {
	counter := metric.Must(meter).NewInt64Counter(
		ServerCompletedCount,
		metric.WithDescription("Count of served requests, by HTTP method and response status"),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			counter.Add(r.Context(), 1, methodKey.String(r.Method), statusKey.String(strconv.Itoa(status)))
		})
	}
}
