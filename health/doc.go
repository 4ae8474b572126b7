// Package health reports whether the font service can serve requests.
//
// A Checker reports one component's Status: Healthy, Degraded or
// Unhealthy. The service registers a checker for the font registry (at
// least one font loaded), the artifact store (root directory writable), the
// generation bulkhead (free slots) and process memory, combines them with
// an Aggregator and exposes them over HTTP:
//
//	agg := health.NewAggregator()
//	agg.Register("registry", health.NewRegistryChecker(reg))
//	agg.Register("store", health.NewStoreChecker(fs.Root()))
//	health.RegisterHandlers(mux, agg)
//
// /healthz is a liveness probe, /readyz runs every checker and /health
// returns the per-check JSON report.
package health
