package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/sentinel"
	txcontext "landregistry/pkg/platform/tx"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// PostgresStore persists properties in PostgreSQL. It is pure I/O; every
// precondition belongs to the registry service. Calls made inside
// RunInTx use the transaction carried by the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert writes the property and metadata and advances the counters in the
// single registry_state row. The row lock serializes allocation.
func (s *PostgresStore) Insert(ctx context.Context, p *models.Property, m *models.Metadata) error {
	exec := txcontext.Or(ctx, s.db)

	var next int64
	err := exec.QueryRowContext(ctx,
		`SELECT next_property_id FROM registry_state WHERE id = 1 FOR UPDATE`).Scan(&next)
	if err != nil {
		return fmt.Errorf("lock registry state: %w", err)
	}
	if uint64(next) != uint64(p.ID) {
		return fmt.Errorf("property %d: %w", p.ID, sentinel.ErrAlreadyUsed)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO properties (id, owner, registered_at, last_transfer_at, status, value, lat, lng, area_sq_ft)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		int64(p.ID), string(p.Owner), int64(p.RegisteredAt), int64(p.LastTransferAt),
		p.Status.String(), int64(p.Value), p.Coordinates.Lat, p.Coordinates.Lng, int64(p.AreaSqFt),
	)
	if err != nil {
		return mapInsertErr("insert property", err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO property_metadata (property_id, legal_description, property_type, zoning_code, tax_id)
		VALUES ($1, $2, $3, $4, $5)
	`, int64(p.ID), m.LegalDescription, m.PropertyType, m.ZoningCode, m.TaxID)
	if err != nil {
		return mapInsertErr("insert property metadata", err)
	}

	_, err = exec.ExecContext(ctx, `
		UPDATE registry_state
		SET next_property_id = next_property_id + 1,
			total_properties = total_properties + 1
		WHERE id = 1
	`)
	if err != nil {
		return fmt.Errorf("advance registry counters: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id models.PropertyID) (*models.Property, error) {
	row := txcontext.Or(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, owner, registered_at, last_transfer_at, status, value, lat, lng, area_sq_ft
		FROM properties
		WHERE id = $1
	`, int64(id))
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindMetadata(ctx context.Context, id models.PropertyID) (*models.Metadata, error) {
	var m models.Metadata
	var pid int64
	err := txcontext.Or(ctx, s.db).QueryRowContext(ctx, `
		SELECT property_id, legal_description, property_type, zoning_code, tax_id
		FROM property_metadata
		WHERE property_id = $1
	`, int64(id)).Scan(&pid, &m.LegalDescription, &m.PropertyType, &m.ZoningCode, &m.TaxID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find property metadata: %w", err)
	}
	m.PropertyID = models.PropertyID(pid)
	return &m, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Property) error {
	res, err := txcontext.Or(ctx, s.db).ExecContext(ctx, `
		UPDATE properties
		SET owner = $2, last_transfer_at = $3, status = $4, value = $5
		WHERE id = $1
	`, int64(p.ID), string(p.Owner), int64(p.LastTransferAt), p.Status.String(), int64(p.Value))
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) State(ctx context.Context) (models.RegistryState, error) {
	var st models.RegistryState
	var next, total int64
	err := txcontext.Or(ctx, s.db).QueryRowContext(ctx, `
		SELECT next_property_id, total_properties, paused FROM registry_state WHERE id = 1
	`).Scan(&next, &total, &st.Paused)
	if err != nil {
		return st, fmt.Errorf("read registry state: %w", err)
	}
	st.NextPropertyID = models.PropertyID(next)
	st.TotalProperties = uint64(total)
	return st, nil
}

func (s *PostgresStore) SetPaused(ctx context.Context, paused bool) error {
	_, err := txcontext.Or(ctx, s.db).ExecContext(ctx,
		`UPDATE registry_state SET paused = $1 WHERE id = 1`, paused)
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	return nil
}

func scanProperty(row *sql.Row) (*models.Property, error) {
	var (
		p                                           models.Property
		id, registeredAt, lastTransfer, value, area int64
		owner, status                               string
	)
	if err := row.Scan(&id, &owner, &registeredAt, &lastTransfer, &status, &value,
		&p.Coordinates.Lat, &p.Coordinates.Lng, &area); err != nil {
		return nil, err
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("decode status %q: %w", status, err)
	}
	p.ID = models.PropertyID(id)
	p.Owner = models.Principal(owner)
	p.RegisteredAt = uint64(registeredAt)
	p.LastTransferAt = uint64(lastTransfer)
	p.Status = st
	p.Value = uint64(value)
	p.AreaSqFt = uint64(area)
	return &p, nil
}

func mapInsertErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
