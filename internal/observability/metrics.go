package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	TwilioSend = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "twilio_send_total", Help: "Twilio send outcomes"},
		[]string{"result", "http_status"},
	)
	TwilioLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "twilio_send_latency_seconds", Help: "Twilio send latency"},
	)
	WebhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "twilio_webhook_requests_total", Help: "Webhook requests by verification result"},
		[]string{"result"},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "twilio_webhook_events_total", Help: "Status callback events by message status"},
		[]string{"status"},
	)
	Enqueues = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sms_enqueue_total", Help: "SQS enqueue results"},
		[]string{"result"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Inbound HTTP requests"},
		[]string{"endpoint", "status"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(TwilioSend, TwilioLatency, WebhookRequests, WebhookEvents, Enqueues, HTTPRequests)
}
