// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// listen address, the optional API key and the graceful shutdown window.
//
// # Usage
//
// This package is used by core/config to embed server settings and by the start
// command to bind the Fiber application.
package server
