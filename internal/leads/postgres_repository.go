package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec rowQuerier) *PostgresRepository {
	if exec == nil {
		panic("leads: exec required")
	}
	return &PostgresRepository{pool: exec}
}

const leadColumns = `
	id, type, status, name, email, COALESCE(phone, ''), COALESCE(company, ''),
	message, COALESCE(property_id::text, ''), COALESCE(preferred_datetime, ''),
	created_at, updated_at
`

func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	stored := *lead
	if stored.ID == "" {
		stored.ID = NewID()
	}
	if stored.Status == "" {
		stored.Status = StatusNew
	}

	if stored.PropertyID != "" {
		var exists bool
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, stored.PropertyID,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("leads: property lookup: %w", err)
		}
		if !exists {
			return nil, ErrPropertyNotFound
		}
	}

	query := `
		INSERT INTO leads (id, type, status, name, email, phone, company, message,
			property_id, preferred_datetime)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8,
			NULLIF($9, '')::uuid, NULLIF($10, ''))
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		stored.ID, string(stored.Type), string(stored.Status),
		stored.Name, stored.Email, stored.Phone, stored.Company, stored.Message,
		stored.PropertyID, stored.PreferredDateTime,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return &stored, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*Lead, error) {
	var (
		conds []string
		args  []any
	)
	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// UpdateStatus applies the forward-only progression in one statement: the
// WHERE clause names every legal transition, so an existing lead that does
// not match is a transition violation.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	query := `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND (
			status = $2
			OR (status = 'New' AND $2 IN ('Contacted', 'Closed'))
			OR (status = 'Contacted' AND $2 = 'Closed')
		)
		RETURNING ` + leadColumns
	row := r.pool.QueryRow(ctx, query, id, string(status))
	lead, err := scanLead(row)
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("leads: update status failed: %w", err)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrInvalidTransition
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID, &lead.Type, &lead.Status, &lead.Name, &lead.Email,
		&lead.Phone, &lead.Company, &lead.Message,
		&lead.PropertyID, &lead.PreferredDateTime,
		&lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

var _ Repository = (*PostgresRepository)(nil)
