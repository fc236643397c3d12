package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes. Exactly one is recorded per served request.
const (
	OutcomeOK                  = "ok"
	OutcomeUnsupportedProtocol = "unsupported_protocol"
	OutcomeProtocolViolation   = "protocol_violation"
	OutcomeApplicationError    = "application_error"
	OutcomeChannelClosed       = "channel_closed"
)

// Recorder holds the bridge's Prometheus instruments. A nil Recorder is
// valid and records nothing, so instrumentation stays optional.
type Recorder struct {
	requests *prometheus.CounterVec
	inflight prometheus.Gauge
	chunks   prometheus.Counter
	duration prometheus.Histogram
}

// NewRecorder registers the bridge instruments with reg. A nil reg uses
// the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syncbridge",
			Name:      "requests_total",
			Help:      "Requests served by the bridge, by outcome.",
		}, []string{"outcome"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "syncbridge",
			Name:      "requests_inflight",
			Help:      "Requests currently executing on a worker.",
		}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "syncbridge",
			Name:      "body_chunks_total",
			Help:      "Response body events sent.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "syncbridge",
			Name:      "request_duration_seconds",
			Help:      "Wall time from scope receipt to terminal event.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(r.requests, r.inflight, r.chunks, r.duration)
	return r
}

// RequestStarted marks one request in flight.
func (r *Recorder) RequestStarted() {
	if r == nil {
		return
	}
	r.inflight.Inc()
}

// RequestFinished records the outcome and duration of one request and
// takes it out of flight.
func (r *Recorder) RequestFinished(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.inflight.Dec()
	r.requests.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
}

// ChunkSent counts one response body event.
func (r *Recorder) ChunkSent() {
	if r == nil {
		return
	}
	r.chunks.Inc()
}
