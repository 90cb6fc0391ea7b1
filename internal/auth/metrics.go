package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics exposes the coordinator bookkeeping as gauges.
func (p *OIDCProvider) RegisterMetrics(reg prometheus.Registerer) error {
	gauges := []struct {
		name, help string
		value      func(s Stats) float64
	}{
		{"login_coordinator_issued", "Authorization requests minted by the login coordinator.",
			func(s Stats) float64 { return float64(s.Issued) }},
		{"login_coordinator_in_flight", "Code exchanges currently waiting on the identity provider.",
			func(s Stats) float64 { return float64(s.InFlight) }},
		{"login_coordinator_succeeded", "Code exchanges that produced a verified identity.",
			func(s Stats) float64 { return float64(s.Succeeded) }},
		{"login_coordinator_failed", "Code exchanges that were denied.",
			func(s Stats) float64 { return float64(s.Failed) }},
	}

	for _, g := range gauges {
		value := g.value

		collector := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return value(p.Stats()) },
		)

		if err := reg.Register(collector); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}
