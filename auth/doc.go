// Package auth provides bearer token authentication for the image feed API.
//
//   - auth/jwt      HMAC JWT service generic over the claims type
//   - auth/authctx  request context propagation for validated claims
//
// The top-level package holds the TokenValidator contract, the feed's
// Claims type and the config section:
//
//	auth:
//	  enabled: true
//	  jwt:
//	    secret: "change-me"
//	    issuer: "imagefeed"
//	    access_token_ttl: "24h"
package auth
