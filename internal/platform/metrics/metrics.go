package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	signaturesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sigcheck_signatures_generated_total",
		Help: "Signatures generated",
	})
	verifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigcheck_verifications_total",
		Help: "Signature verifications by result",
	}, []string{"result"})
	webhookValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigcheck_webhook_validations_total",
		Help: "Webhook validations by outcome",
	}, []string{"outcome"})
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigcheck_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(signaturesGenerated, verifications, webhookValidations, requestDuration)
}

func Handler() http.Handler { return promhttp.Handler() }

func IncGenerated() { signaturesGenerated.Inc() }

func IncVerification(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	verifications.WithLabelValues(result).Inc()
}

func IncWebhookValidation(outcome string) { webhookValidations.WithLabelValues(outcome).Inc() }

func ObserveRequest(route string, status int, elapsed time.Duration) {
	requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
