// Package memory keeps item images in process memory for local development.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/lostfound/services/item/domain"
)

const scheme = "memory://"

// BlobStore implements repositories.BlobStore with a map keyed by object key.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewBlobStore returns an empty BlobStore.
func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string][]byte)}
}

// Put stores a copy of data under a fresh key tagged with its content hash.
func (b *BlobStore) Put(_ context.Context, data []byte, contentType, pathHint string) (string, error) {
	sum := sha256.Sum256(data)
	key := strings.Trim(pathHint, "/") + "/" + uuid.NewString() + "-" + hex.EncodeToString(sum[:8])
	if ext, ok := strings.CutPrefix(contentType, "image/"); ok {
		key += "." + ext
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	b.mu.Lock()
	b.objects[key] = cp
	b.mu.Unlock()
	return scheme + key, nil
}

func (b *BlobStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, scheme)
	if !ok {
		return fmt.Errorf("%w: not a memory url: %q", itemdomain.ErrBlobStore, url)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.objects[key]; !exists {
		return fmt.Errorf("%w: no object at %q", itemdomain.ErrBlobStore, url)
	}
	delete(b.objects, key)
	return nil
}

// Ping always succeeds.
func (b *BlobStore) Ping(context.Context) error { return nil }

// Len reports the number of stored objects.
func (b *BlobStore) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
