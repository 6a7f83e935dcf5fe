// Package transport builds the outbound HTTP clients used by the object storage
// client and the discovery adapters (network controller, virtualization cluster).
//
// Transports carry strict connect, handshake and response-header timeouts.
// Session clients add a private cookie jar so an authenticated session lives exactly
// as long as one discovery run.
package transport
