// Package response holds the JSON envelope shared by every API handler.
//
// Mutations answer {"success": true, ...} or {"success": false, "error": "..."}.
// Validation failures add a "fields" map and use HTTP 400; storage failures use 500.
// Discovery failures keep HTTP 200 and are written by the handlers with Fail.
package response
