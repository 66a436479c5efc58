package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	minSecretLength = 32
	keyLength       = 32
	keyInfoPrefix   = "modelbind.cookie."
)

// Manager writes plain, signed and encrypted cookies. Keys are derived from
// the configured secrets per purpose, so data protected for one purpose does
// not verify or decrypt under another.
type Manager struct {
	secrets  []string
	purpose  string
	signKeys [][]byte
	encKeys  [][]byte
	defaults Options
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	m := &Manager{
		secrets:  secrets,
		defaults: defaults.with(opts),
	}
	if err := m.deriveKeys(); err != nil {
		return nil, err
	}
	return m, nil
}

// WithPurpose returns a manager sharing the secrets and cookie defaults of m
// whose keys are bound to purpose.
func (m *Manager) WithPurpose(purpose string) (*Manager, error) {
	pm := &Manager{
		secrets:  m.secrets,
		purpose:  purpose,
		defaults: m.defaults,
	}
	if err := pm.deriveKeys(); err != nil {
		return nil, err
	}
	return pm, nil
}

// Purpose returns the purpose the keys are bound to.
func (m *Manager) Purpose() string {
	return m.purpose
}

// Defaults returns the cookie attributes applied when no option overrides them.
func (m *Manager) Defaults() Options {
	return m.defaults
}

func (m *Manager) deriveKeys() error {
	m.signKeys = make([][]byte, 0, len(m.secrets))
	m.encKeys = make([][]byte, 0, len(m.secrets))
	for _, secret := range m.secrets {
		sk, err := deriveKey(secret, "sign."+m.purpose)
		if err != nil {
			return err
		}
		ek, err := deriveKey(secret, "encrypt."+m.purpose)
		if err != nil {
			return err
		}
		m.signKeys = append(m.signKeys, sk)
		m.encKeys = append(m.encKeys, ek)
	}
	return nil
}

func deriveKey(secret, label string) ([]byte, error) {
	key := make([]byte, keyLength)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfoPrefix+label))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return key, nil
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	cookie := m.defaults.with(opts).cookie(name, value)
	if err := cookie.Valid(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}

	http.SetCookie(w, cookie)
	return nil
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return cookie.Value, nil
}

func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.defaults.expired(name))
}

func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	return m.Set(w, name, m.sign(value), opts...)
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(signed)
}

func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	encrypted, err := m.Encrypt([]byte(value))
	if err != nil {
		return err
	}
	return m.Set(w, name, encrypted, opts...)
}

func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	encrypted, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	plaintext, err := m.Decrypt(encrypted)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, m.signKeys[0])
	mac.Write([]byte(value))
	signature := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	return base64.URLEncoding.EncodeToString([]byte(value)) + "|" + signature
}

func (m *Manager) verify(signed string) (string, error) {
	encodedValue, signature, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.URLEncoding.DecodeString(encodedValue)
	if err != nil {
		return "", ErrInvalidFormat
	}

	// Every key is tried so cookies signed before a rotation stay valid.
	for _, key := range m.signKeys {
		mac := hmac.New(sha256.New, key)
		mac.Write(value)
		expectedSig := base64.URLEncoding.EncodeToString(mac.Sum(nil))

		if subtle.ConstantTimeCompare([]byte(signature), []byte(expectedSig)) == 1 {
			return string(value), nil
		}
	}

	return "", ErrInvalidSignature
}

// Encrypt seals plaintext with AES-256-GCM under the newest key and returns
// the URL-safe base64 of nonce and ciphertext.
func (m *Manager) Encrypt(plaintext []byte) (string, error) {
	gcm, err := newGCM(m.encKeys[0])
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt, trying every key from newest to oldest.
func (m *Manager) Decrypt(encrypted string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encrypted, "="))
	if err != nil {
		return nil, ErrInvalidFormat
	}

	for _, key := range m.encKeys {
		gcm, err := newGCM(key)
		if err != nil {
			return nil, err
		}
		if len(ciphertext) < gcm.NonceSize() {
			return nil, ErrInvalidFormat
		}

		nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
		if plaintext, err := gcm.Open(nil, nonce, sealed, nil); err == nil {
			return plaintext, nil
		}
	}

	return nil, ErrDecryptionFailed
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
