// Package config loads the fontopsd service configuration.
//
// A configuration file is YAML; unknown keys are rejected. The listen
// address, directories and admin credentials pass through
// secret.Resolver, so ${VAR} references must be set and
// secretref:file:<path> values are read from disk, relative to the
// configuration file:
//
//	listen: ":3000"
//	data_dir: /srv/fontops
//	cache_cleanup_days: 7
//	admin:
//	  api_keys:
//	    - id: ops
//	      key: ${FONTOPS_OPS_KEY}
//	  jwt_secret: secretref:file:/run/secrets/fontops_jwt
//	observe:
//	  service_name: fontops
//	  metrics: {enabled: true, exporter: prometheus}
package config
