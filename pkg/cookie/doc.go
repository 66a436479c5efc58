// Package cookie writes and reads plain, signed and encrypted HTTP cookies.
//
// A Manager is created from one or more secrets of at least 32 bytes. The
// first secret protects new cookies; the others are kept for reading, so
// secrets can be rotated without invalidating cookies already issued.
//
// Keys are not the secrets themselves. Signing and encryption keys are
// derived with HKDF-SHA256 and bound to a purpose:
//
//	man, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")})
//	if err != nil {
//	    return err
//	}
//	tempData, err := man.WithPurpose("tempdata")
//
// A value encrypted by tempData cannot be decrypted by man or by a manager
// with any other purpose.
//
// # Operations
//
//   - Set, Get and Delete handle plain cookies.
//   - SetSigned and GetSigned add an HMAC-SHA256 signature (integrity only).
//   - SetEncrypted and GetEncrypted use AES-256-GCM with a random nonce
//     prepended to the ciphertext (integrity and privacy).
//   - Encrypt and Decrypt expose the same protection for binary payloads
//     stored elsewhere, such as temp data.
//
// # Configuration
//
// Config loads from the environment (COOKIE_SECRETS is a comma separated
// list) and is turned into a manager by NewFromConfig. Only non-zero fields
// are applied.
//
// # Errors
//
// ErrCookieNotFound, ErrInvalidSignature, ErrInvalidFormat and
// ErrDecryptionFailed are returned as sentinels for errors.Is.
package cookie
