// Package server holds the HTTP server configuration.
//
// The configuration covers the listen port, the API key that protects all
// endpoints, and the per-client rate limit applied to the API. The actual
// Fiber application is assembled in the start command.
package server
