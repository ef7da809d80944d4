package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(
		AccountsCreated,
		WebhookEvents,
		PlatformPushes,
	)
}

var AccountsCreated = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "relay",
	Name:      "accounts_created_total",
	Help:      "Connected accounts created and mapped to a row",
})

var WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "relay",
	Name:      "webhook_events_total",
	Help:      "Webhook events received by outcome",
}, []string{"outcome"})

var PlatformPushes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "relay",
	Name:      "platform_pushes_total",
	Help:      "Pushes to the app platform by result",
}, []string{"result"})

// PushResult returns the label value for a platform push.
func PushResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
