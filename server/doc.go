// Package server exposes the font service over HTTP.
//
// Routes:
//
//	GET  /api/v1/list                 registered fonts, localized by Accept-Language
//	GET  /api/v1/font?id=&char=       subset artifact, generated on demand
//	POST /api/v1/generate?id=&char=   regenerate an artifact (admin)
//	GET  /static/{font}/{key}.woff2   persisted artifacts only
//	GET  /healthz, /readyz, /health   health checks
//	GET  /metrics                     Prometheus exposition, when configured
//
// Artifacts are served as application/font-woff2 with an immutable
// Cache-Control header; errors are JSON objects {"error": "..."}.
package server
