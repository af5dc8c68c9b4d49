/*
Package observability exposes controller activity as Prometheus metrics.

Metrics are fed through domain.Hooks, so they can be merged with any other
hooks (logging, tests) passed to the controller:

	m := observability.NewMetrics(prometheus.NewRegistry())
	ctrl, err := tendril.New(tendril.WithHooks(m.Hooks()))

Handler serves the collected metrics for scraping.
*/
package observability
