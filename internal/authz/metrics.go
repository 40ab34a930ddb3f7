package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "crewbase",
		Subsystem: "authz",
		Name:      "decisions_total",
		Help:      "Authorization decisions by outcome and reason.",
	},
	[]string{"outcome", "reason"},
)

func observeDecision(d Decision) {
	outcome := "deny"
	if d.Allowed {
		outcome = "allow"
	}
	decisionCounter.WithLabelValues(outcome, string(d.Reason)).Inc()
}
