// Package middleware provides HTTP middleware: request IDs, structured
// request logging, panic recovery, CORS, gzip compression, token bucket
// rate limiting, Prometheus request metrics, and JWT authentication.
package middleware
