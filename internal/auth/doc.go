// Package auth provides stateless bearer-token authentication for restlab.
//
// # Tokens
//
// Tokens are HS256-signed JWTs carrying sub, iat and exp claims. Validity
// is a pure function of the token's content and the current time: there is
// no server-side session table and no revocation. All tokens issued by one
// process are verifiable only by a process holding the identical secret.
//
// # Components
//
//   - Codec: encodes and decodes tokens. Decode fails with exactly one of
//     ErrMalformedToken, ErrBadSignature or ErrExpiredToken.
//   - Gate: issues tokens for verified credentials (Login) and verifies
//     presented tokens (Verify). Credentials are a fixed username-to-bcrypt
//     -hash set loaded from configuration.
//   - Middleware / RequireAuth: the per-request interceptor pair.
//
// # Authentication vs authorization
//
// Middleware only authenticates. A request with an invalid or expired
// token is handed downstream as anonymous, exactly like a request with no
// token at all; Middleware never writes a 401. RequireAuth is the
// authorization check that rejects anonymous requests on protected routes.
// This split is a deliberate contract, not an accident: keep it when
// adding routes.
package auth
