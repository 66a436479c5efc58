package cookie

import "errors"

var (
	ErrNoSecret       = errors.New("cookie: no secret configured")
	ErrSecretTooShort = errors.New("cookie: secret too short")
	ErrKeyDerivation  = errors.New("cookie: purpose key derivation failed")

	// ErrInvalidCookie is returned by Set when net/http rejects the name or
	// value.
	ErrInvalidCookie  = errors.New("cookie: invalid cookie")
	ErrCookieNotFound = errors.New("cookie: not found")

	// Tampered, truncated or stale values. Readers such as temp data treat
	// these as an absent cookie.
	ErrInvalidSignature = errors.New("cookie: invalid signature")
	ErrInvalidFormat    = errors.New("cookie: invalid format")
	ErrDecryptionFailed = errors.New("cookie: decryption failed")
)
