package service

import (
	"context"
	"errors"

	"landregistry/internal/registry/models"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/sentinel"
)

const (
	opBootstrap        = "bootstrap"
	opAddAdministrator = "add_administrator"
	opSetPaused        = "set_paused"
)

// HasRole reports whether identity holds an active grant of at least
// required. Absent or inactive grants are false, not errors.
func (s *Service) HasRole(ctx context.Context, identity models.Principal, required models.Role) (bool, error) {
	admin, err := s.admins.Find(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load administrator")
	}
	return admin.Satisfies(required), nil
}

func (s *Service) requireRole(ctx context.Context, identity models.Principal, required models.Role, msg string) error {
	ok, err := s.HasRole(ctx, identity, required)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, msg)
	}
	return nil
}

func (s *Service) requireDeployer(caller models.Principal) error {
	if s.deployer.IsZero() || caller != s.deployer {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry deployer")
	}
	return nil
}

// Bootstrap grants the deployer the registrar role. Running it again
// re-grants the same role.
func (s *Service) Bootstrap(ctx context.Context, caller models.Principal) (err error) {
	ctx, inv := s.begin(ctx, opBootstrap, caller)
	defer func() { s.end(inv, err) }()

	subject := adminSubject(caller)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stamp(txCtx, inv); err != nil {
			return err
		}
		if err := s.requireDeployer(caller); err != nil {
			return err
		}
		grant := &models.Administrator{Principal: caller, Role: models.RoleRegistrar, Active: true}
		if err := s.admins.Upsert(txCtx, grant); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store administrator")
		}
		return nil
	})
	if err != nil {
		return s.deny(ctx, inv, subject, err)
	}

	s.logAudit(ctx, inv, audit.EventRegistryBootstrapped, subject)
	if s.metrics != nil {
		s.metrics.IncrementGranted()
	}
	return nil
}

// AddAdministrator upserts a grant for target. Only the deployer may call it.
// A lower role or active=false revokes.
func (s *Service) AddAdministrator(ctx context.Context, caller, target models.Principal, role models.Role, active bool) (err error) {
	ctx, inv := s.begin(ctx, opAddAdministrator, caller)
	defer func() { s.end(inv, err) }()

	subject := adminSubject(target)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stamp(txCtx, inv); err != nil {
			return err
		}
		if err := s.requireDeployer(caller); err != nil {
			return err
		}
		if target.IsZero() {
			return dErrors.New(dErrors.CodeBadRequest, "target principal is required")
		}
		grant := &models.Administrator{Principal: target, Role: role, Active: active}
		if err := s.admins.Upsert(txCtx, grant); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store administrator")
		}
		return nil
	})
	if err != nil {
		return s.deny(ctx, inv, subject, err)
	}

	s.logAudit(ctx, inv, audit.EventAdministratorGranted, subject,
		"role", role.String(),
		"active", active,
	)
	if s.metrics != nil {
		s.metrics.IncrementGranted()
	}
	return nil
}

// GetAdministrator returns the grant for identity, if any.
func (s *Service) GetAdministrator(ctx context.Context, identity models.Principal) (admin *models.Administrator, found bool, err error) {
	err = s.read(ctx, func(ctx context.Context) error {
		admin, err = s.admins.Find(ctx, identity)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load administrator")
	}
	return admin, true, nil
}

func (s *Service) ListAdministrators(ctx context.Context) (admins []*models.Administrator, err error) {
	err = s.read(ctx, func(ctx context.Context) error {
		admins, err = s.admins.List(ctx)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list administrators")
	}
	return admins, nil
}

// SetPaused toggles the registry-wide pause flag. While paused, register,
// transfer and audit fail with unauthorized.
func (s *Service) SetPaused(ctx context.Context, caller models.Principal, paused bool) (err error) {
	ctx, inv := s.begin(ctx, opSetPaused, caller)
	defer func() { s.end(inv, err) }()

	const subject = "registry"
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stamp(txCtx, inv); err != nil {
			return err
		}
		if err := s.requireDeployer(caller); err != nil {
			return err
		}
		if err := s.properties.SetPaused(txCtx, paused); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update pause flag")
		}
		return nil
	})
	if err != nil {
		return s.deny(ctx, inv, subject, err)
	}

	event := audit.EventRegistryResumed
	if paused {
		event = audit.EventRegistryPaused
	}
	s.logAudit(ctx, inv, event, subject)
	return nil
}
