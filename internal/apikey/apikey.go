// Package apikey keeps the backend API key issued to this client.
package apikey

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"frame/internal/services"
	"frame/internal/services/backend"
)

// StorageKey is the local store key holding the issued API key.
const StorageKey = "frame_api_key"

// KV is the persistence the manager needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Generator issues new keys.
type Generator interface {
	GenerateAPIKey(ctx context.Context) (*backend.APIKey, error)
}

// Manager returns the stored key, generating and persisting one on first use.
type Manager struct {
	kv  KV
	gen Generator
}

// NewManager builds a Manager.
func NewManager(kv KV, gen Generator) *Manager {
	return &Manager{kv: kv, gen: gen}
}

// Current returns the stored key without generating one.
func (m *Manager) Current(ctx context.Context) (string, bool, error) {
	value, ok, err := m.kv.Get(ctx, StorageKey)
	if err != nil {
		return "", false, err
	}
	value = strings.TrimSpace(value)
	return value, ok && value != "", nil
}

// Ensure returns the stored key, or asks the backend for one and stores it.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	if key, ok, err := m.Current(ctx); err != nil {
		return "", err
	} else if ok {
		return key, nil
	}
	return m.Rotate(ctx)
}

// Rotate always generates a fresh key and replaces the stored one.
func (m *Manager) Rotate(ctx context.Context) (string, error) {
	if m.gen == nil {
		return "", services.Wrap(services.ErrConfiguration, "apikey", "generate", "backend not configured", nil)
	}
	issued, err := m.gen.GenerateAPIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	if issued == nil || strings.TrimSpace(issued.Key) == "" {
		return "", services.Wrap(services.ErrBackend, "apikey", "generate", "backend returned an empty key", nil)
	}
	if err := m.kv.Put(ctx, StorageKey, issued.Key); err != nil {
		return "", fmt.Errorf("store api key: %w", err)
	}
	return issued.Key, nil
}

// Forget deletes the stored key.
func (m *Manager) Forget(ctx context.Context) error {
	if m.kv == nil {
		return errors.New("apikey: no store")
	}
	return m.kv.Delete(ctx, StorageKey)
}
