package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// ProductsMemoryStorage in-memory каталог продуктов
type ProductsMemoryStorage struct {
	mu       sync.RWMutex
	products map[uuid.UUID]storage.Product
}

func NewProductsMemoryStorage() *ProductsMemoryStorage {
	return &ProductsMemoryStorage{
		products: make(map[uuid.UUID]storage.Product),
	}
}

func (s *ProductsMemoryStorage) CreateProduct(ctx context.Context, product *storage.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now().UTC()

	s.products[product.ID] = *product
	return nil
}

func (s *ProductsMemoryStorage) GetProduct(ctx context.Context, id uuid.UUID) (*storage.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *ProductsMemoryStorage) SearchProducts(ctx context.Context, query string, limit int) ([]storage.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	result := []storage.Product{}
	for _, p := range s.products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			p.Barcode == q {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})

	return paginate(result, limit, 0), nil
}
