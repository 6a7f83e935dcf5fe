// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key or Bearer token). Disabled when no key is configured.
//   - rayid: assigns every request a Ray ID, stored in locals under "ray_id" and echoed in
//     the X-Ray-ID response header so log lines can be correlated with responses.
package middleware
