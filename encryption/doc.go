// Package encryption seals short secrets, such as a provider API token held
// for the lifetime of a session, with an AEAD cipher. The key is derived from
// a passphrase with SHA-256. Ciphertexts are base64 and carry their nonce.
package encryption
