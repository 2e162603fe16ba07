// Package handler contains HTTP handlers for the REST API. Handlers decode
// and validate requests, call into services, and translate service errors
// to RFC 9457 problem responses via MapServiceError.
package handler
