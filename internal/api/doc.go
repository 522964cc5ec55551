// Package api exposes the restlab HTTP surface.
//
// # Routes
//
//	GET    /api/v1/users          list users            (protected)
//	GET    /api/v1/users/{id}     fetch one user        (protected)
//	POST   /api/v1/users          create, 201+Location  (protected)
//	PUT    /api/v1/users/{id}     replace fields        (protected)
//	DELETE /api/v1/users/{id}     remove, 204           (protected)
//	POST   /api/v1/auth/login     obtain a bearer token (public)
//	GET    /health                liveness              (public)
//
// Protected routes require Authorization: Bearer <token>. The bearer
// middleware itself never rejects; the RequireAuth wrapper on the user
// routes returns the 401.
//
// # Error bodies
//
// Every non-2xx response carries a structured JSON body. Validation
// failures are 400 with a per-field message map; unknown ids are 404; bad
// credentials are 401 with a deliberately generic message; anything
// unexpected is a 500 with a fixed body that never echoes internal error
// text.
package api
