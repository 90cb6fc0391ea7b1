package oidc

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes counted by login_attempts_total.
const (
	OutcomeInitiated          = "initiated"
	OutcomeBound              = "bound"
	OutcomeRejected           = "rejected"
	OutcomeExchangeFailed     = "exchange_failed"
	OutcomeCoordinationFailed = "coordination_failed"
	OutcomeLogout             = "logout"
)

var (
	attempts     *prometheus.CounterVec //nolint:gochecknoglobals
	attemptsOnce sync.Once              //nolint:gochecknoglobals
)

func registerMetrics() {
	attemptsOnce.Do(func() {
		attempts = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Login flow steps, differentiated by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

func count(outcome string) {
	attempts.WithLabelValues(outcome).Inc()
}
