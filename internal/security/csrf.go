package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CSRFHeader carries the token on mutating API requests
const CSRFHeader = "X-CSRF-Token"

// CSRFGenerator derives CSRF tokens from the device id with HMAC-SHA256, so
// any replica sharing the secret can validate them.
type CSRFGenerator struct {
	secret []byte
}

func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: DeriveKey(secret, purposeCSRF)}
}

// GenerateToken returns the CSRF token for deviceID
func (g *CSRFGenerator) GenerateToken(deviceID string) (string, error) {
	if deviceID == "" {
		return "", fmt.Errorf("device ID is required")
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(deviceID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token is the valid CSRF token for deviceID
func (g *CSRFGenerator) ValidateToken(deviceID, token string) bool {
	if deviceID == "" || token == "" {
		return false
	}
	expected, err := g.GenerateToken(deviceID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
