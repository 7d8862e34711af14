package service

import (
	"context"
	"errors"

	"landregistry/internal/registry/models"
	"landregistry/internal/registry/validation"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/sentinel"
)

const (
	opRegister     = "register"
	opTransfer     = "transfer"
	opAudit        = "audit"
	opUpdateStatus = "update_status"
)

func (s *Service) requireUnpaused(ctx context.Context) (models.RegistryState, error) {
	state, err := s.properties.State(ctx)
	if err != nil {
		return state, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry state")
	}
	if state.Paused {
		return state, dErrors.New(dErrors.CodeUnauthorized, "registry is paused")
	}
	return state, nil
}

func (s *Service) loadProperty(ctx context.Context, id models.PropertyID) (*models.Property, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodePropertyNotFound, "property not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property")
	}
	return p, nil
}

// Register records a new property owned by caller and returns its id.
//
// Checks, first failure wins: registry unpaused, caller holds REGISTRAR,
// coordinates in bounds, area positive.
func (s *Service) Register(ctx context.Context, caller models.Principal, cmd models.RegisterCommand) (id models.PropertyID, err error) {
	ctx, inv := s.begin(ctx, opRegister, caller)
	defer func() { s.end(inv, err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stamp(txCtx, inv); err != nil {
			return err
		}
		state, err := s.requireUnpaused(txCtx)
		if err != nil {
			return err
		}
		if err := s.requireRole(txCtx, caller, models.RoleRegistrar, "caller is not a registrar"); err != nil {
			return err
		}
		if !validation.ValidCoordinates(cmd.Coordinates.Lat, cmd.Coordinates.Lng) {
			return dErrors.New(dErrors.CodeInvalidCoordinates, "coordinates out of range")
		}
		if !validation.PositiveQuantity(cmd.AreaSqFt) {
			if s.legacyAreaError {
				return dErrors.New(dErrors.CodeInvalidCoordinates, "area must be positive")
			}
			return dErrors.New(dErrors.CodeInvalidArea, "area must be positive")
		}

		next := state.NextPropertyID
		meta := cmd.Metadata(next)
		if err := meta.Validate(); err != nil {
			return err
		}
		p, err := models.NewProperty(next, caller, cmd.Coordinates, cmd.AreaSqFt, cmd.Value, inv.height)
		if err != nil {
			return err
		}
		if err := s.properties.Insert(txCtx, p, meta); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Wrap(err, dErrors.CodePropertyExists, "property id already allocated")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store property")
		}
		id = next
		return nil
	})
	if err != nil {
		return 0, s.deny(ctx, inv, "registry", err)
	}

	s.logAudit(ctx, inv, audit.EventPropertyRegistered, propertySubject(id),
		"property_id", id.String(),
	)
	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	return id, nil
}

// Transfer hands ownership of id from caller to recipient.
//
// Checks, first failure wins: registry unpaused, property exists, caller is
// the owner, recipient differs from caller, status is Active.
func (s *Service) Transfer(ctx context.Context, caller models.Principal, id models.PropertyID, recipient models.Principal) (err error) {
	ctx, inv := s.begin(ctx, opTransfer, caller)
	defer func() { s.end(inv, err) }()

	subject := propertySubject(id)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stamp(txCtx, inv); err != nil {
			return err
		}
		if _, err := s.requireUnpaused(txCtx); err != nil {
			return err
		}
		p, err := s.loadProperty(txCtx, id)
		if err != nil {
			return err
		}
		if !p.IsOwnedBy(caller) {
			return dErrors.New(dErrors.CodeNotOwner, "caller does not own the property")
		}
		if recipient.IsZero() || recipient == caller {
			return dErrors.New(dErrors.CodeInvalidRecipient, "recipient must differ from the owner")
		}
		if !p.Status.Transferable() {
			return dErrors.New(dErrors.CodeTransferRestricted, "property status "+p.Status.String()+" does not allow transfer")
		}

		if s.recordTransfers {
			rec := &models.TransferRecord{
				PropertyID: id,
				Timestamp:  inv.height,
				From:       caller,
				To:         recipient,
			}
			if err := s.appendHistory(txCtx, rec); err != nil {
				return err
			}
		}
		p.ApplyTransfer(recipient, inv.height)
		if err := s.properties.Update(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update property")
		}
		return nil
	})
	if err != nil {
		return s.deny(ctx, inv, subject, err)
	}

	s.logAudit(ctx, inv, audit.EventPropertyTransferred, subject,
		"recipient", recipient.String(),
	)
	if s.metrics != nil {
		s.metrics.IncrementTransferred()
	}
	return nil
}

// Audit records a notarized valuation of id at price.
//
// Checks, first failure wins: registry unpaused, property and metadata exist,
// caller holds REGISTRAR, notary holds NOTARY, price positive, status Active
// or Pending, coordinates still in bounds. The status is forced to Active.
func (s *Service) Audit(ctx context.Context, caller models.Principal, id models.PropertyID, price uint64, notary models.Principal) (summary *models.AuditSummary, err error) {
	ctx, inv := s.begin(ctx, opAudit, caller)
	defer func() { s.end(inv, err) }()

	subject := propertySubject(id)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stamp(txCtx, inv); err != nil {
			return err
		}
		if _, err := s.requireUnpaused(txCtx); err != nil {
			return err
		}
		p, err := s.loadProperty(txCtx, id)
		if err != nil {
			return err
		}
		if _, err := s.properties.FindMetadata(txCtx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodePropertyNotFound, "property metadata not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property metadata")
		}
		if err := s.requireRole(txCtx, caller, models.RoleRegistrar, "caller is not a registrar"); err != nil {
			return err
		}
		if err := s.requireRole(txCtx, notary, models.RoleNotary, "notary is not an active notary"); err != nil {
			return err
		}
		if !validation.PositiveQuantity(price) {
			return dErrors.New(dErrors.CodeInsufficientPayment, "audit price must be positive")
		}
		if !p.Status.Auditable() {
			return dErrors.New(dErrors.CodeTransferRestricted, "property status "+p.Status.String()+" does not allow audit")
		}
		if !p.Coordinates.Valid() {
			return dErrors.New(dErrors.CodeInvalidCoordinates, "stored coordinates out of range")
		}

		rec := &models.TransferRecord{
			PropertyID: id,
			Timestamp:  inv.height,
			From:       p.Owner,
			To:         p.Owner,
			Price:      price,
			Notarized:  true,
		}
		if err := s.appendHistory(txCtx, rec); err != nil {
			return err
		}
		p.ApplyAudit(price, inv.height)
		if err := s.properties.Update(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update property")
		}

		summary = &models.AuditSummary{
			Timestamp:        inv.height,
			Value:            p.Value,
			Notary:           notary,
			Status:           p.Status,
			CoordinatesValid: true,
			OwnerVerified:    true,
		}
		return nil
	})
	if err != nil {
		return nil, s.deny(ctx, inv, subject, err)
	}

	s.logAudit(ctx, inv, audit.EventPropertyAudited, subject,
		"notary", notary.String(),
		"value", price,
	)
	if s.metrics != nil {
		s.metrics.IncrementAudited()
	}
	return summary, nil
}

// UpdateStatus moves id to next along the status transition table. Any
// registrar may flag or dispute a property; only the deployer may lift a
// freeze.
func (s *Service) UpdateStatus(ctx context.Context, caller models.Principal, id models.PropertyID, next models.Status) (err error) {
	ctx, inv := s.begin(ctx, opUpdateStatus, caller)
	defer func() { s.end(inv, err) }()

	subject := propertySubject(id)
	var previous models.Status
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stamp(txCtx, inv); err != nil {
			return err
		}
		if err := s.requireRole(txCtx, caller, models.RoleRegistrar, "caller is not a registrar"); err != nil {
			return err
		}
		p, err := s.loadProperty(txCtx, id)
		if err != nil {
			return err
		}
		if !next.IsValid() {
			return dErrors.New(dErrors.CodeBadRequest, "unknown status")
		}
		if !p.Status.CanTransitionTo(next) {
			return dErrors.New(dErrors.CodeTransferRestricted,
				"status cannot change from "+p.Status.String()+" to "+next.String())
		}
		if p.Status == models.StatusFrozen {
			if err := s.requireDeployer(caller); err != nil {
				return err
			}
		}

		previous = p.Status
		p.ApplyStatus(next)
		if err := s.properties.Update(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update property")
		}
		return nil
	})
	if err != nil {
		return s.deny(ctx, inv, subject, err)
	}

	s.logAudit(ctx, inv, audit.EventPropertyStatusChanged, subject,
		"from", previous.String(),
		"to", next.String(),
	)
	if s.metrics != nil {
		s.metrics.IncrementStatusChange(next.String())
	}
	return nil
}

func (s *Service) appendHistory(ctx context.Context, rec *models.TransferRecord) error {
	if err := s.history.Append(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "history entry already recorded at this height")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history")
	}
	return nil
}
