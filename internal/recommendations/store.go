package recommendations

import (
	"sync"
	"time"

	"github.com/digiberkat/storefront-go/pkg/storefront"
)

// Store caches the latest recommendation result so UI surfaces (search screen,
// home carousel) can re-render it without re-querying the recommender.
type Store struct {
	mu      sync.RWMutex
	query   string
	results []storefront.RecommendedProduct
	updated time.Time

	now func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Set replaces the cached result for the given query.
func (s *Store) Set(query string, results []storefront.RecommendedProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.results = append([]storefront.RecommendedProduct(nil), results...)
	s.updated = s.now()
}

// Clear drops the cached result, as when the user resets the search.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.results = nil
	s.updated = time.Time{}
}

// Latest returns the cached query, its results and when they were stored.
// ok is false when nothing is cached.
func (s *Store) Latest() (query string, results []storefront.RecommendedProduct, updated time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.updated.IsZero() {
		return "", nil, time.Time{}, false
	}
	out := append([]storefront.RecommendedProduct(nil), s.results...)
	return s.query, out, s.updated, true
}
