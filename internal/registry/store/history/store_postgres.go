package history

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

const uniqueViolation = "23505"

// PostgresStore persists the transfer history. The table has no UPDATE or
// DELETE path in this package.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec *models.TransferRecord) error {
	_, err := txcontext.Or(ctx, s.db).ExecContext(ctx, `
		INSERT INTO transfer_history (property_id, sequence, from_principal, to_principal, price, notarized)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, int64(rec.PropertyID), int64(rec.Timestamp), string(rec.From), string(rec.To), int64(rec.Price), rec.Notarized)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("append history: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id models.PropertyID, sequence uint64) (*models.TransferRecord, error) {
	row := txcontext.Or(ctx, s.db).QueryRowContext(ctx, `
		SELECT property_id, sequence, from_principal, to_principal, price, notarized
		FROM transfer_history
		WHERE property_id = $1 AND sequence = $2
	`, int64(id), int64(sequence))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListByProperty(ctx context.Context, id models.PropertyID) ([]*models.TransferRecord, error) {
	rows, err := txcontext.Or(ctx, s.db).QueryContext(ctx, `
		SELECT property_id, sequence, from_principal, to_principal, price, notarized
		FROM transfer_history
		WHERE property_id = $1
		ORDER BY sequence
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []*models.TransferRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.TransferRecord, error) {
	var (
		rec                  models.TransferRecord
		pid, sequence, price int64
	)
	if err := row.Scan(&pid, &sequence, &rec.From, &rec.To, &price, &rec.Notarized); err != nil {
		return nil, err
	}
	rec.PropertyID = models.PropertyID(pid)
	rec.Timestamp = uint64(sequence)
	rec.Price = uint64(price)
	return &rec, nil
}
