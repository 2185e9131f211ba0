package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CallbacksProcessed   prometheus.Counter
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	AssessmentsCreated   *prometheus.CounterVec
	NPSCreated           *prometheus.CounterVec
	BroadcastDelivered   prometheus.Counter
	BroadcastFailed      prometheus.Counter
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of messages processed",
		}),
		CallbacksProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_callbacks_processed_total",
			Help: "Total number of callback queries processed",
		}),
		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of handler errors and panics",
		}),
		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),
		AssessmentsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_assessments_created_total",
			Help: "Total number of quality assessments created",
		}, []string{"score"}),
		NPSCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_nps_created_total",
			Help: "Total number of NPS responses created",
		}, []string{"score"}),
		BroadcastDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_broadcast_delivered_total",
			Help: "Total number of broadcast messages delivered",
		}),
		BroadcastFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_broadcast_failed_total",
			Help: "Total number of broadcast deliveries that failed",
		}),
	}
}
