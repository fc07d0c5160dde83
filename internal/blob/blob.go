package blob

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound           = errors.New("blob not found")
	ErrPresignUnsupported = errors.New("presign not supported")
)

// Store хранит файлы отчётов
type Store interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	// PresignGet returns ErrPresignUnsupported when the store cannot hand out URLs.
	PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// LocalStore keeps objects in process memory (BLOB_MODE=local).
type LocalStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore() *LocalStore {
	return &LocalStore{objects: make(map[string][]byte)}
}

func (s *LocalStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[key] = buf
	s.mu.Unlock()

	return int64(len(buf)), nil
}

func (s *LocalStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *LocalStore) PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error) {
	return "", ErrPresignUnsupported
}

// DeleteObject is idempotent, same as S3.
func (s *LocalStore) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}
