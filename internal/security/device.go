package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DeviceCookieName holds the signed device token
const DeviceCookieName = "balagh_device"

// DeviceTokenTTL is how long a device cookie stays valid without a visit
const DeviceTokenTTL = 365 * 24 * time.Hour

const deviceIssuer = "balagh"

var ErrInvalidDeviceToken = errors.New("invalid device token")

// DeviceSigner issues and verifies the HS256 tokens that identify a device.
// The device id is the token subject; it selects the device's stored state.
type DeviceSigner struct {
	secret []byte
	now    func() time.Time
}

// NewDeviceSigner creates a signer. secret must not be empty.
func NewDeviceSigner(secret string) (*DeviceSigner, error) {
	if secret == "" {
		return nil, errors.New("device secret is required")
	}
	return &DeviceSigner{secret: DeriveKey(secret, purposeDeviceToken), now: time.Now}, nil
}

// GenerateDeviceID creates a new random device id
func GenerateDeviceID() string {
	return uuid.New().String()
}

// Issue signs a token for deviceID
func (s *DeviceSigner) Issue(deviceID string) (string, error) {
	if deviceID == "" {
		return "", fmt.Errorf("device ID is required")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    deviceIssuer,
		Subject:   deviceID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(DeviceTokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies token and returns its device id
func (s *DeviceSigner) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(deviceIssuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDeviceToken, err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: bad subject", ErrInvalidDeviceToken)
	}
	return claims.Subject, nil
}

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateDeviceCookie creates the device cookie with proper security flags
func CreateDeviceCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     DeviceCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie for deletion with proper security flags
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
