// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Handlers write every response through these helpers so the dashboard
// front-end always receives the same `{error, message}` envelope on failure.
package httputil
