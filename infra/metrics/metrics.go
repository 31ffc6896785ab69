// Package metrics records matching activity in Prometheus form. It is
// the timing collaborator: the service measures each order it handles
// and reports the duration here, never inside the book itself.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	reg *prometheus.Registry

	handleDuration *prometheus.HistogramVec
	filledQty      *prometheus.CounterVec
	notional       *prometheus.CounterVec
	ordersAdded    *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	levels         *prometheus.GaugeVec
	reportsDropped prometheus.Counter
	reportsSent    *prometheus.CounterVec
}

// New registers every collector on a private registry.
func New(namespace string) *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		handleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handle_order_duration_seconds",
			Help:      "Wall-clock time spent matching one incoming order.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"type", "side"}),
		filledQty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filled_quantity_total",
			Help:      "Units filled against resting liquidity.",
		}, []string{"type", "side"}),
		notional: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filled_notional_total",
			Help:      "Sum of fill quantity times level price.",
		}, []string{"type", "side"}),
		ordersAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_added_total",
			Help:      "Resting orders inserted into the book.",
		}, []string{"book_side"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Requests refused by validation.",
		}, []string{"op", "reason"}),
		levels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_levels",
			Help:      "Distinct resting price levels per side.",
		}, []string{"book_side"}),
		reportsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_reports_dropped_total",
			Help:      "Fill reports discarded because the broadcast queue was full.",
		}),
		reportsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_reports_sent_total",
			Help:      "Fill reports handed to the sink, by outcome.",
		}, []string{"result"}),
	}

	r.reg.MustRegister(
		r.handleDuration,
		r.filledQty,
		r.notional,
		r.ordersAdded,
		r.rejected,
		r.levels,
		r.reportsDropped,
		r.reportsSent,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format, or
// 404s for a nil Recorder.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveHandle(typ, side string, elapsed time.Duration, filled int64, notional float64) {
	if r == nil {
		return
	}
	r.handleDuration.WithLabelValues(typ, side).Observe(elapsed.Seconds())
	r.filledQty.WithLabelValues(typ, side).Add(float64(filled))
	r.notional.WithLabelValues(typ, side).Add(notional)
}

func (r *Recorder) OrderAdded(bookSide string) {
	if r == nil {
		return
	}
	r.ordersAdded.WithLabelValues(bookSide).Inc()
}

func (r *Recorder) Rejected(op, reason string) {
	if r == nil {
		return
	}
	r.rejected.WithLabelValues(op, reason).Inc()
}

func (r *Recorder) SetLevels(bookSide string, n int) {
	if r == nil {
		return
	}
	r.levels.WithLabelValues(bookSide).Set(float64(n))
}

func (r *Recorder) ReportDropped() {
	if r == nil {
		return
	}
	r.reportsDropped.Inc()
}

func (r *Recorder) ReportSent(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.reportsSent.WithLabelValues(result).Inc()
}
