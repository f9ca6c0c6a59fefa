package fft3d

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/fft3dfilter/dsp/spectral"
)

// Metrics collects filter activity. A nil *Metrics records nothing.
type Metrics struct {
	frames   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	restarts *prometheus.CounterVec
	errors   prometheus.Counter
}

// NewMetrics registers the filter collectors on reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		frames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fft3d_frames_filtered_total",
				Help: "Planes filtered, by plane index and temporal mode",
			},
			[]string{"plane", "mode"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fft3d_plane_filter_seconds",
				Help:    "Time to filter one plane of one frame",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"plane"},
		),
		restarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fft3d_history_resets_total",
				Help: "Temporal history discards caused by out of order requests",
			},
			[]string{"plane"},
		),
		errors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fft3d_frame_errors_total",
				Help: "Frame requests that failed",
			},
		),
	}
}

func (m *Metrics) observePlane(idx, bt int, d time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(idx)
	m.frames.WithLabelValues(label, spectral.ModeName(bt)).Inc()
	m.latency.WithLabelValues(label).Observe(d.Seconds())
}

func (m *Metrics) restart(idx int) {
	if m == nil {
		return
	}
	m.restarts.WithLabelValues(strconv.Itoa(idx)).Inc()
}

func (m *Metrics) failed() {
	if m == nil {
		return
	}
	m.errors.Inc()
}
