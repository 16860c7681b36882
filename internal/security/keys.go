package security

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes for DeriveKey
const (
	purposeDeviceToken = "balagh device token v1"
	purposeCSRF        = "balagh csrf v1"
)

const derivedKeySize = 32

// DeriveKey expands the application secret into a 32 byte HKDF-SHA256 key
// dedicated to purpose.
func DeriveKey(secret, purpose string) []byte {
	key := make([]byte, derivedKeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255 hash lengths of output
		panic(err)
	}
	return key
}
