package product

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// Store exposes read-only catalog access.
type Store interface {
	// List returns the catalog in its upstream desirability order.
	List(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
}

// MemoryStore implements Store with an in-memory slice, suitable for development and tests.
type MemoryStore struct {
	items []Product
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied products, keeping their order.
func NewMemoryStore(items []Product) *MemoryStore {
	return &MemoryStore{items: append([]Product(nil), items...)}
}

// List returns a copy of the catalog in seed order.
func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	return append([]Product(nil), s.items...), nil
}

// FindByID looks up a product by identifier.
func (s *MemoryStore) FindByID(_ context.Context, id string) (Product, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return Product{}, ErrNotFound
}
