// Package identity generates the opaque, prefix-tagged identifiers used by the inventory.
//
// Ids look like "srv_3f2a...": a kind prefix (rck, srv, svc, net) for debuggability
// followed by the 32 hex characters of a random UUID. Keeping all 128 bits makes
// collisions negligible, so callers never check-and-retry.
//
// Fixed ids (the demo seed rows) and ids supplied by the network controller bypass
// the generator.
package identity
