package cryptoutil

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
)

// RandomHex returns n random bytes hex-encoded (2n characters).
func RandomHex(n int) (string, error) {
	bs := make([]byte, n)
	if _, err := rand.Read(bs); err != nil {
		return "", err
	}
	return hex.EncodeToString(bs), nil
}

// RandomToken returns n random bytes as an unpadded URL-safe base64
// string, suitable for unguessable identifiers.
func RandomToken(n int) (string, error) {
	bs := make([]byte, n)
	if _, err := rand.Read(bs); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bs), nil
}
