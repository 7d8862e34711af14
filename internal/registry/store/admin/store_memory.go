package admin

import (
	"context"
	"sort"
	"sync"

	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/sentinel"
)

// InMemory keeps administrator grants keyed by principal.
type InMemory struct {
	mu     sync.RWMutex
	grants map[models.Principal]models.Administrator
}

func NewInMemory() *InMemory {
	return &InMemory{grants: make(map[models.Principal]models.Administrator)}
}

func (s *InMemory) Find(_ context.Context, principal models.Principal) (*models.Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.grants[principal]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

// Upsert overwrites any previous grant for the principal.
func (s *InMemory) Upsert(_ context.Context, admin *models.Administrator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[admin.Principal] = *admin
	return nil
}

// List returns every grant ordered by principal.
func (s *InMemory) List(_ context.Context) ([]*models.Administrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Administrator, 0, len(s.grants))
	for _, a := range s.grants {
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Principal < out[j].Principal })
	return out, nil
}
