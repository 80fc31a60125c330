package catalog

import (
	"fmt"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// Store holds the product set of the current catalog load.
// It is shared by all sessions and safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	products []Product
	index    map[int64]int
	version  uint64
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		index: make(map[int64]int),
	}
}

// Load replaces the entire product set atomically.
// A single malformed or duplicate record rejects the whole load and leaves
// the previous product set untouched.
func (s *Store) Load(raw []RawProduct) error {
	products := make([]Product, 0, len(raw))
	index := make(map[int64]int, len(raw))

	for i, r := range raw {
		p, err := NewProductFromRaw(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := index[p.ID]; dup {
			return fmt.Errorf("record %d: %w: duplicate id %d", i, shared.ErrCatalogDataInvalid, p.ID)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.index = index
	s.version++
	return nil
}

// Clear removes every product
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = nil
	s.index = make(map[int64]int)
	s.version++
}

// Get returns the product with the given id
func (s *Store) Get(id int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrUnknownProduct)
	}
	return s.products[i], nil
}

// Has reports whether id resolves in the store
func (s *Store) Has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// All returns a copy of the products in source order
func (s *Store) All() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of products
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Version returns the load generation; it changes on every Load and Clear
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
