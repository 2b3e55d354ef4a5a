package catalog

import (
	"strings"
	"sync/atomic"
	"time"

	"sheetpos/pos/internal/domain"
)

// Snapshot is an immutable loaded catalog.
type Snapshot struct {
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Result   *Result   `json:"-"`

	byID map[int]int
}

func NewSnapshot(source string, result *Result, loadedAt time.Time) *Snapshot {
	byID := make(map[int]int, len(result.Products))
	for i, p := range result.Products {
		byID[p.ID] = i
	}
	return &Snapshot{
		Source:   source,
		LoadedAt: loadedAt,
		Result:   result,
		byID:     byID,
	}
}

func (s *Snapshot) Products() []domain.Product {
	if s == nil || s.Result == nil {
		return nil
	}
	return s.Result.Products
}

func (s *Snapshot) Product(id int) (domain.Product, bool) {
	if s == nil {
		return domain.Product{}, false
	}
	idx, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.Result.Products[idx], true
}

// Search matches the term case-insensitively against name, localized name,
// category and barcode. An empty term returns every product.
func (s *Snapshot) Search(term string) []domain.Product {
	products := s.Products()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}

	filtered := make([]domain.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.NameLocalized), term) ||
			strings.Contains(strings.ToLower(p.Category), term) ||
			strings.Contains(strings.ToLower(p.Barcode), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Store publishes catalog snapshots; readers never see a partial load.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

func (s *Store) Replace(snapshot *Snapshot) {
	s.current.Store(snapshot)
}

// Product looks up a product in the current snapshot.
func (s *Store) Product(id int) (domain.Product, bool) {
	return s.Current().Product(id)
}
