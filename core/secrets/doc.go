// Package secrets seals credentials before they are written to the settings table.
//
// A Box derives an AES-256 key from the configured passphrase (SECRETS_KEY) and
// produces "enc:v1:" prefixed, base64 encoded GCM ciphertexts with a random nonce.
// Without a passphrase the Box is nil and callers must not persist secrets at all.
package secrets
