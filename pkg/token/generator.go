package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// DefaultLength is the default token length in bytes.
	DefaultLength = 32

	// MinLength is the smallest accepted token length in bytes (128 bits).
	MinLength = 16
)

// GenerateWithLength generates a cryptographically secure random token of
// the specified byte length.
//
// The returned token is Base64 RawURL encoded so it can be embedded in
// form fields, headers and cookies without escaping.
func GenerateWithLength(length int) (string, error) {
	if length < MinLength {
		return "", fmt.Errorf("token: length %d below minimum %d", length, MinLength)
	}
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Source is a random token source with a fixed byte length.
//
// The zero value produces DefaultLength tokens.
type Source struct {
	Length int
}

// NewSource creates a Source producing tokens of the given byte length.
// A length of zero selects DefaultLength.
func NewSource(length int) (*Source, error) {
	if length == 0 {
		length = DefaultLength
	}
	if length < MinLength {
		return nil, fmt.Errorf("token: length %d below minimum %d", length, MinLength)
	}
	return &Source{Length: length}, nil
}

// Next returns a fresh random token.
func (s *Source) Next() (string, error) {
	length := s.Length
	if length == 0 {
		length = DefaultLength
	}
	return GenerateWithLength(length)
}
