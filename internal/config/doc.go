// Package config handles configuration loading for restlab.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. Any ${VAR_NAME} in the file is replaced with the value of that
// environment variable before parsing, which keeps the signing secret out
// of the file itself:
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//	auth:
//	  jwt_secret: "${RESTLAB_JWT_SECRET}"
//	  token_lifetime: "24h"
//	  users:
//	    - username: demo
//	      password_hash: "$2a$10$..."
//	store:
//	  seed_demo: true
//	logging:
//	  level: info
//	  format: color
//
// token_lifetime is a Go duration string. The login endpoint reports the
// lifetime to clients in milliseconds.
//
// The secret and the credential set are loaded once at startup and never
// change for the process lifetime.
package config
