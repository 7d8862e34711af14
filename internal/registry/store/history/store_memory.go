package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/sentinel"
)

type key struct {
	property models.PropertyID
	sequence uint64
}

// InMemory is the append-only transfer history. There is no update or
// delete path.
type InMemory struct {
	mu      sync.RWMutex
	records map[key]models.TransferRecord
	byProp  map[models.PropertyID][]uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[key]models.TransferRecord),
		byProp:  make(map[models.PropertyID][]uint64),
	}
}

// Append stores rec under (PropertyID, Timestamp). An occupied key is
// ErrAlreadyUsed; existing records are never overwritten.
func (s *InMemory) Append(_ context.Context, rec *models.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{property: rec.PropertyID, sequence: rec.Timestamp}
	if _, exists := s.records[k]; exists {
		return fmt.Errorf("history %d@%d: %w", rec.PropertyID, rec.Timestamp, sentinel.ErrAlreadyUsed)
	}
	s.records[k] = *rec
	seqs := append(s.byProp[rec.PropertyID], rec.Timestamp)
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	s.byProp[rec.PropertyID] = seqs
	return nil
}

func (s *InMemory) Find(_ context.Context, id models.PropertyID, sequence uint64) (*models.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key{property: id, sequence: sequence}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// ListByProperty returns the records for id in ascending sequence order.
func (s *InMemory) ListByProperty(_ context.Context, id models.PropertyID) ([]*models.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seqs := s.byProp[id]
	out := make([]*models.TransferRecord, 0, len(seqs))
	for _, seq := range seqs {
		rec := s.records[key{property: id, sequence: seq}]
		out = append(out, &rec)
	}
	return out, nil
}
