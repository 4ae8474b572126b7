// Package secret resolves credential values in the service configuration.
//
// Config values pass through ExpandEnvStrict, so ${VAR} must be set.
// A value of the form "secretref:<provider>:<ref>" is then replaced by the
// named Provider; FileProvider reads mounted secret files:
//
//	admin:
//	  jwt_secret: secretref:file:/run/secrets/fontops_jwt
//	  api_keys:
//	    - id: ops
//	      key: ${FONTOPS_OPS_KEY}
package secret
