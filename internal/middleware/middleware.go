// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request IDs, request logging, metrics, tracing, CORS
// and panic recovery, and hold the global error handler that
// renders every error body.
package middleware
