package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotation_documents_rendered_total",
		Help: "Documents rendered by output format and result",
	}, []string{"format", "result"})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quotation_document_render_duration_seconds",
		Help:    "Time spent capturing and encoding a document",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
)

func observeRender(format Format, result string, start time.Time) {
	documentsRendered.WithLabelValues(string(format), result).Inc()
	renderDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
}
