package security

import (
	"bytes"
	"crypto/tls"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDeviceTokenRoundTrip(t *testing.T) {
	s, err := NewDeviceSigner("secret")
	if err != nil {
		t.Fatalf("NewDeviceSigner() error = %v", err)
	}
	id := GenerateDeviceID()

	token, err := s.Issue(id)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	got, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != id {
		t.Errorf("Parse() = %q, want %q", got, id)
	}
}

func TestDeviceTokenRejected(t *testing.T) {
	s, _ := NewDeviceSigner("secret")
	other, _ := NewDeviceSigner("other")
	id := GenerateDeviceID()
	foreign, _ := other.Issue(id)

	expired, _ := NewDeviceSigner("secret")
	expired.now = func() time.Time { return time.Now().Add(-2 * DeviceTokenTTL) }
	old, _ := expired.Issue(id)

	notUUID, _ := s.Issue("kitchen")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", old},
		{"bad subject", notUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Parse(tt.token); !errors.Is(err, ErrInvalidDeviceToken) {
				t.Errorf("Parse() error = %v, want %v", err, ErrInvalidDeviceToken)
			}
		})
	}
}

func TestNewDeviceSignerRequiresSecret(t *testing.T) {
	if _, err := NewDeviceSigner(""); err == nil {
		t.Error("NewDeviceSigner(\"\") should fail")
	}
}

func TestDeriveKey(t *testing.T) {
	a := DeriveKey("secret", purposeCSRF)
	if len(a) != derivedKeySize {
		t.Fatalf("DeriveKey() length = %d, want %d", len(a), derivedKeySize)
	}
	if !bytes.Equal(a, DeriveKey("secret", purposeCSRF)) {
		t.Error("DeriveKey() is not deterministic")
	}
	if bytes.Equal(a, DeriveKey("secret", purposeDeviceToken)) {
		t.Error("purposes must yield different keys")
	}
	if bytes.Equal(a, DeriveKey("other", purposeCSRF)) {
		t.Error("secrets must yield different keys")
	}
}

func TestCSRFToken(t *testing.T) {
	g := NewCSRFGenerator("secret")
	token, err := g.GenerateToken("device-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name   string
		device string
		token  string
		want   bool
	}{
		{"valid", "device-1", token, true},
		{"other device", "device-2", token, false},
		{"empty token", "device-1", "", false},
		{"empty device", "", token, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateToken(tt.device, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := g.GenerateToken(""); err == nil {
		t.Error("GenerateToken(\"\") should fail")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients should have their own bucket")
	}

	rl.cleanup(time.Now().Add(3 * time.Hour))
	if !rl.Allow("1.2.3.4") {
		t.Error("idle visitors should be forgotten")
	}
	rl.Close()
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:80", "10.0.0.3"},
		{"remote addr", nil, "1.1.1.1:80", "1.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSecureRequest(t *testing.T) {
	plain := httptest.NewRequest("GET", "http://example.com/", nil)
	if IsSecureRequest(plain) {
		t.Error("plain request reported secure")
	}

	proxied := httptest.NewRequest("GET", "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	if !IsSecureRequest(proxied) {
		t.Error("proxied https request reported insecure")
	}

	direct := httptest.NewRequest("GET", "/", nil)
	direct.TLS = &tls.ConnectionState{}
	if !IsSecureRequest(direct) {
		t.Error("TLS request reported insecure")
	}

	c := CreateDeviceCookie(proxied, "v", time.Now().Add(time.Hour))
	if !c.Secure || !c.HttpOnly || c.Name != DeviceCookieName {
		t.Errorf("CreateDeviceCookie() = %+v", c)
	}
}
