package server

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeStore is an in-memory ObjectStore. Error fields inject failures for
// the coordination paths (upload compensation, folder-delete ordering).
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	putErr    error
	removeErr error
	signErr   error

	removeCalls [][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) RemoveMany(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, append([]string(nil), keys...))
	if f.removeErr != nil {
		return f.removeErr
	}
	// Missing keys are no-ops, matching the MinIO implementation.
	for _, k := range keys {
		delete(f.objects, k)
	}
	return nil
}

func (f *fakeStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return "", f.signErr
	}
	if _, ok := f.objects[key]; !ok {
		return "", fmt.Errorf("no such key: %s", key)
	}
	return "https://storage.test/" + key + "?sig=fake", nil
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}
