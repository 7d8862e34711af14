package property

import (
	"context"
	"fmt"
	"sync"

	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/sentinel"
)

// InMemory keeps properties, metadata and the registry scalars in maps.
// Returned values are copies; callers persist changes through Update.
type InMemory struct {
	mu         sync.RWMutex
	properties map[models.PropertyID]models.Property
	metadata   map[models.PropertyID]models.Metadata
	state      models.RegistryState
}

func NewInMemory() *InMemory {
	return &InMemory{
		properties: make(map[models.PropertyID]models.Property),
		metadata:   make(map[models.PropertyID]models.Metadata),
		state:      models.InitialState(),
	}
}

// Insert stores a new property and its metadata and advances the counters.
// The property id must be the next id; anything else is ErrAlreadyUsed.
func (s *InMemory) Insert(_ context.Context, p *models.Property, m *models.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.properties[p.ID]; exists || p.ID != s.state.NextPropertyID {
		return fmt.Errorf("property %d: %w", p.ID, sentinel.ErrAlreadyUsed)
	}
	meta := *m
	meta.PropertyID = p.ID
	s.properties[p.ID] = *p
	s.metadata[p.ID] = meta
	s.state.NextPropertyID++
	s.state.TotalProperties++
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id models.PropertyID) (*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindMetadata(_ context.Context, id models.PropertyID) (*models.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metadata[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &m, nil
}

// Update overwrites an existing property. Metadata is never updated.
func (s *InMemory) Update(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.properties[p.ID] = *p
	return nil
}

func (s *InMemory) State(_ context.Context) (models.RegistryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

func (s *InMemory) SetPaused(_ context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Paused = paused
	return nil
}
