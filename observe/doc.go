// Package observe provides observability primitives for font generation.
//
// It wraps OpenTelemetry tracing and metrics and a JSON structured logger
// behind small interfaces. The generation coordinator wraps its pipeline in
// a Middleware; the HTTP server and registry log through Logger.
package observe
