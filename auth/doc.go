// Package auth authenticates administrative requests to the font service.
//
// Regeneration replaces persisted artifacts, so it is gated on a credential:
// an API key in the X-API-Key header or an HMAC-signed JWT bearer token.
// CompositeAuthenticator tries each configured method and Middleware
// guards an http.Handler with the result.
package auth
