package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/codes"
)

const metricsNamespace = "devfs"

// Metrics collects request and traffic counters for the device server.
type Metrics struct {
	Requests     *prometheus.CounterVec
	BytesRead    prometheus.Counter
	BytesWritten prometheus.Counter
}

// NewMetrics creates the server metrics and registers them with reg, unless
// reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Device service requests by method and status code.",
		}, []string{"method", "code"}),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "bytes_read_total",
			Help:      "Bytes read from devices.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written to devices.",
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Requests, m.BytesRead, m.BytesWritten} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(method string, code codes.Code) {
	m.Requests.WithLabelValues(method, code.String()).Inc()
}
