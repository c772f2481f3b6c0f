// Package cogbot provides an adapter for the encryption package.
package cogbot

import (
	"context"
	"fmt"

	"github.com/CreativeUnicorns/cogbot/encryption"
)

// EncryptedStorage wraps a Storage so that every blob is sealed with
// AES-256-GCM before it is written and opened after it is read.
// A blob that fails to open (wrong key, plaintext written before encryption
// was enabled, tampering) is reported as ErrUndecryptable, which LoadCache
// does not overwrite.
type EncryptedStorage struct {
	next    Storage
	manager *encryption.Manager
}

// NewEncryptedStorage wraps next using the key from the environment.
// It returns an error if the key is missing or too short.
func NewEncryptedStorage(next Storage) (*EncryptedStorage, error) {
	manager, err := encryption.NewManager()
	if err != nil {
		return nil, err
	}
	return &EncryptedStorage{next: next, manager: manager}, nil
}

// NewEncryptedStorageWithKey wraps next using the provided key material.
func NewEncryptedStorageWithKey(next Storage, key []byte) (*EncryptedStorage, error) {
	manager, err := encryption.NewManagerWithKey(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedStorage{next: next, manager: manager}, nil
}

// Read returns the decrypted blob stored under name.
func (e *EncryptedStorage) Read(ctx context.Context, name string) ([]byte, error) {
	sealed, err := e.next.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	plaintext, err := e.manager.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: cache %q: %w", ErrUndecryptable, name, err)
	}
	return plaintext, nil
}

// Write encrypts data and stores it under name.
func (e *EncryptedStorage) Write(ctx context.Context, name string, data []byte) error {
	sealed, err := e.manager.Seal(data)
	if err != nil {
		return err
	}
	return e.next.Write(ctx, name, sealed)
}

// Close closes the wrapped Storage.
func (e *EncryptedStorage) Close() error {
	return e.next.Close()
}
