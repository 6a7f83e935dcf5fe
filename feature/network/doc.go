// Package network syncs network devices from a UniFi controller.
//
// # Protocol
//
// Controllers come in two shapes. UniFi OS consoles accept POST /api/auth/login and
// serve devices under /proxy/network/api/s/{site}/stat/device; the standalone Network
// application uses POST /api/login and /api/s/{site}/stat/device. The Negotiator tries
// the shape that last worked for a host first, then modern, then legacy. A non-200
// login moves on to the next shape; a transport error stops the sync.
//
// # Sync
//
// A pull is a reconcile job: the controller listing replaces every network device with
// is_manual=false in one transaction, together with the credentials that worked.
// Manual devices are never touched. A failed login or device fetch changes nothing.
//
// Field defaults: name falls back to the model then "Unknown Device", ip to "N/A",
// model to "UniFi Device", and type is capitalized ("uap" becomes "Uap").
// Devices without a controller _id get a generated net_ id.
//
// # Credentials
//
// The CredentialStore keeps host and user in settings and seals the password with
// core/secrets. Without SECRETS_KEY the password is not stored at all and later pulls
// must send it again.
package network
