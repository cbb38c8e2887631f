/*
Package security protects the console's credentials at rest and in transit.

# Session Sealing

The stored session carries the access and refresh tokens. A Sealer encrypts
the record with AES-256-GCM before it reaches disk; the random nonce is
prepended to the ciphertext:

	sealed = nonce (12 bytes) || GCM(key, nonce, record)

The key is 32 random bytes kept next to the database, created on first use
with mode 0600:

	key, err := security.LoadOrCreateKey(filepath.Join(dataDir, security.KeyFile))
	sealer, err := security.NewSealer(key)

NewSealerFromPassphrase derives the key as SHA-256(passphrase) for setups
that keep the key outside the data dir.

# Gateway TLS

TLSConfig builds the client TLS settings of the gateway from a PEM bundle of
trusted CAs. Certificates that expire within 30 days are logged as warnings.
*/
package security
