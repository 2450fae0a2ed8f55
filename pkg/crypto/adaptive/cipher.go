package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the key length accepted by every cipher in this package.
const KeySize = 32

// CipherType identifies the AEAD algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-256-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

var (
	// ErrKeySize is returned for keys that are not KeySize bytes long.
	ErrKeySize = fmt.Errorf("adaptive: key must be %d bytes", KeySize)

	// ErrMalformed is returned when a sealed value is too short or not
	// valid base64url.
	ErrMalformed = errors.New("adaptive: malformed sealed value")
)

// Cipher seals and opens values. The nonce is prepended to the output.
// A Cipher is safe for concurrent use.
type Cipher struct {
	typ  CipherType
	aead cipher.AEAD
}

// New returns a Cipher using the algorithm preferred on this platform.
func New(key []byte) (*Cipher, error) {
	return NewWithType(key, Preferred())
}

// NewWithType returns a Cipher of the given type.
func NewWithType(key []byte, typ CipherType) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch typ {
	case CipherAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case CipherChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher type %q", typ)
	}
	if err != nil {
		return nil, err
	}

	return &Cipher{typ: typ, aead: aead}, nil
}

// Preferred reports the algorithm New selects on this platform.
// Go uses AES-NI on amd64 and the ARMv8 crypto extensions on arm64.
func Preferred() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64", "s390x":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// Type returns the algorithm in use.
func (c *Cipher) Type() CipherType {
	return c.typ
}

// Overhead returns the number of bytes Seal adds to a plaintext.
func (c *Cipher) Overhead() int {
	return c.aead.NonceSize() + c.aead.Overhead()
}

// Seal encrypts plaintext bound to ad.
func (c *Cipher) Seal(plaintext, ad []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, ad), nil
}

// Open decrypts a value produced by Seal with the same ad.
func (c *Cipher) Open(sealed, ad []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(sealed) < n+c.aead.Overhead() {
		return nil, ErrMalformed
	}
	return c.aead.Open(nil, sealed[:n], sealed[n:], ad)
}

// SealString seals s and returns it as unpadded base64url, suitable for
// cookie values.
func (c *Cipher) SealString(s string, ad []byte) (string, error) {
	sealed, err := c.Seal([]byte(s), ad)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString.
func (c *Cipher) OpenString(s string, ad []byte) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", ErrMalformed
	}
	plain, err := c.Open(sealed, ad)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
