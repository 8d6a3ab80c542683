/*
Package observability exposes search runs as Prometheus metrics.

Metrics are fed by domain.LifecycleHooks, so the navigator itself has no
dependency on Prometheus:

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	finder, err := canopy.New(provider, canopy.WithLifecycleHooks(metrics.Hooks()))
*/
package observability
