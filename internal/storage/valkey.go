package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/valkey-io/valkey-go"
)

// ValkeyStore persists values as Valkey strings
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore connects to a valkey:// or valkeys:// (TLS) URI
func NewValkeyStore(uri string) (*ValkeyStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Valkey URL: %w", err)
	}

	username := ""
	password := ""
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}

	options := valkey.ClientOption{
		InitAddress: []string{u.Host},
		Username:    username,
		Password:    password,
	}
	if u.Scheme == "valkeys" || u.Scheme == "rediss" {
		options.TLSConfig = &tls.Config{ServerName: u.Hostname()}
	}

	client, err := valkey.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}
	return &ValkeyStore{client: client}, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.client.Do(ctx, s.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *ValkeyStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Close releases the client's connections
func (s *ValkeyStore) Close() {
	s.client.Close()
}
