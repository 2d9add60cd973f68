// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/botfleet/lib/bot"
)

const metricsNamespace = "botfleet"

// metrics is the controller's prometheus collector. Bot and region
// gauges are computed from live state at scrape time; the counters are
// incremented as events happen.
type metrics struct {
	controller *Controller

	botsDesc    *prometheus.Desc
	regionsDesc *prometheus.Desc

	connectAttempts prometheus.Counter
	connectFailures prometheus.Counter
	disconnects     prometheus.Counter
}

func newMetrics(controller *Controller) *metrics {
	return &metrics{
		controller: controller,
		botsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "bots"),
			"Number of bots in each connection state.",
			[]string{"state"}, nil,
		),
		regionsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "regions_known"),
			"Number of distinct regions discovered by the fleet.",
			nil, nil,
		),
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connect_attempts_total",
			Help:      "Logins started by connect sequences.",
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connect_failures_total",
			Help:      "Logins that failed.",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "disconnects_total",
			Help:      "Bots that returned to Disconnected from a live session.",
		}),
	}
}

// Collector returns the controller's prometheus collector.
func (c *Controller) Collector() prometheus.Collector { return c.metrics }

func (m *metrics) Describe(descriptors chan<- *prometheus.Desc) {
	descriptors <- m.botsDesc
	descriptors <- m.regionsDesc
	m.connectAttempts.Describe(descriptors)
	m.connectFailures.Describe(descriptors)
	m.disconnects.Describe(descriptors)
}

func (m *metrics) Collect(collected chan<- prometheus.Metric) {
	registry := &m.controller.registry
	registry.mu.Lock()
	counts := make(map[bot.State]int)
	for _, member := range registry.bots {
		counts[member.State()]++
	}
	registry.mu.Unlock()

	for _, state := range bot.States() {
		collected <- prometheus.MustNewConstMetric(m.botsDesc, prometheus.GaugeValue, float64(counts[state]), state.String())
	}
	collected <- prometheus.MustNewConstMetric(m.regionsDesc, prometheus.GaugeValue, float64(m.controller.regions.Len()))
	m.connectAttempts.Collect(collected)
	m.connectFailures.Collect(collected)
	m.disconnects.Collect(collected)
}
