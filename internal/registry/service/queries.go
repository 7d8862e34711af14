package service

import (
	"context"
	"errors"

	"landregistry/internal/registry/models"
	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/platform/sentinel"
)

// read runs fn under the boundary's read lock when it has one.
func (s *Service) read(ctx context.Context, fn func(ctx context.Context) error) error {
	if rt, ok := s.tx.(ReadTx); ok {
		return rt.RunReadOnly(ctx, fn)
	}
	return fn(ctx)
}

// GetPropertyInfo returns the property, or found=false when id is absent.
func (s *Service) GetPropertyInfo(ctx context.Context, id models.PropertyID) (p *models.Property, found bool, err error) {
	err = s.read(ctx, func(ctx context.Context) error {
		p, err = s.properties.FindByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property")
	}
	return p, true, nil
}

// GetPropertyMetadata returns the metadata, or found=false when id is absent.
func (s *Service) GetPropertyMetadata(ctx context.Context, id models.PropertyID) (m *models.Metadata, found bool, err error) {
	err = s.read(ctx, func(ctx context.Context) error {
		m, err = s.properties.FindMetadata(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property metadata")
	}
	return m, true, nil
}

// VerifyOwnership is false both for an unknown id and for a different owner.
func (s *Service) VerifyOwnership(ctx context.Context, id models.PropertyID, claimed models.Principal) (bool, error) {
	p, found, err := s.GetPropertyInfo(ctx, id)
	if err != nil || !found {
		return false, err
	}
	return p.IsOwnedBy(claimed), nil
}

// History returns the audit trail of id, oldest first. An unknown id has an
// empty trail.
func (s *Service) History(ctx context.Context, id models.PropertyID) ([]*models.TransferRecord, error) {
	var records []*models.TransferRecord
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.history.ListByProperty(ctx, id)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	if records == nil {
		records = []*models.TransferRecord{}
	}
	return records, nil
}

// HistoryEntry returns the record of id at sequence, if any.
func (s *Service) HistoryEntry(ctx context.Context, id models.PropertyID, sequence uint64) (rec *models.TransferRecord, found bool, err error) {
	err = s.read(ctx, func(ctx context.Context) error {
		rec, err = s.history.Find(ctx, id, sequence)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history entry")
	}
	return rec, true, nil
}

func (s *Service) Stats(ctx context.Context) (state models.RegistryState, err error) {
	err = s.read(ctx, func(ctx context.Context) error {
		state, err = s.properties.State(ctx)
		return err
	})
	if err != nil {
		return state, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry state")
	}
	return state, nil
}
