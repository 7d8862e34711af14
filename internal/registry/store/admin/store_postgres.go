package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/sentinel"
	txcontext "landregistry/pkg/platform/tx"
)

// PostgresStore persists administrator grants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, principal models.Principal) (*models.Administrator, error) {
	var (
		a    models.Administrator
		role int16
	)
	err := txcontext.Or(ctx, s.db).QueryRowContext(ctx, `
		SELECT principal, role, active FROM administrators WHERE principal = $1
	`, string(principal)).Scan(&a.Principal, &role, &a.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find administrator: %w", err)
	}
	a.Role = models.Role(role)
	return &a, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, admin *models.Administrator) error {
	_, err := txcontext.Or(ctx, s.db).ExecContext(ctx, `
		INSERT INTO administrators (principal, role, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal) DO UPDATE SET
			role = EXCLUDED.role,
			active = EXCLUDED.active
	`, string(admin.Principal), int16(admin.Role), admin.Active)
	if err != nil {
		return fmt.Errorf("upsert administrator: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Administrator, error) {
	rows, err := txcontext.Or(ctx, s.db).QueryContext(ctx, `
		SELECT principal, role, active FROM administrators ORDER BY principal
	`)
	if err != nil {
		return nil, fmt.Errorf("list administrators: %w", err)
	}
	defer rows.Close()

	var out []*models.Administrator
	for rows.Next() {
		var (
			a    models.Administrator
			role int16
		)
		if err := rows.Scan(&a.Principal, &role, &a.Active); err != nil {
			return nil, fmt.Errorf("scan administrator: %w", err)
		}
		a.Role = models.Role(role)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list administrators: %w", err)
	}
	return out, nil
}
