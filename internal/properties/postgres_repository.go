package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores listings in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("properties: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec querier) *PostgresRepository {
	if exec == nil {
		panic("properties: exec required")
	}
	return &PostgresRepository{pool: exec}
}

const propertyColumns = `
	id, title, slug, address, city, state, zip, description,
	square_feet, COALESCE(clear_height, ''), dock_doors, drive_in_doors,
	COALESCE(acreage, 0), lease_or_sale, COALESCE(price_or_rate, ''),
	available_date, highlights, status, featured, archived, created_at, updated_at
`

func (r *PostgresRepository) Create(ctx context.Context, in *PropertyInput) (*Property, error) {
	slugs, err := r.slugs(ctx, "")
	if err != nil {
		return nil, err
	}
	availableDate, err := in.ParsedAvailableDate()
	if err != nil {
		return nil, fmt.Errorf("properties: parse available date: %w", err)
	}
	highlights, err := json.Marshal(emptyIfNil(in.Highlights))
	if err != nil {
		return nil, fmt.Errorf("properties: marshal highlights: %w", err)
	}

	id := NewID()
	slug := GenerateSlug(in.Title, slugs)
	query := `
		INSERT INTO properties (
			id, title, slug, address, city, state, zip, description,
			square_feet, clear_height, dock_doors, drive_in_doors, acreage,
			lease_or_sale, price_or_rate, available_date, highlights, status, featured
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12,
			NULLIF($13, 0), $14, NULLIF($15, ''), $16, $17, $18, $19)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	err = r.pool.QueryRow(ctx, query,
		id, in.Title, slug, in.Address, in.City, in.State, in.Zip, in.Description,
		in.SquareFeet, in.ClearHeight, in.DockDoors, in.DriveInDoors, in.Acreage,
		string(in.LeaseOrSale), in.PriceOrRate, availableDate, highlights,
		string(in.Status), in.Featured,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("properties: insert failed: %w", err)
	}

	for _, img := range in.Images {
		if err := r.attachImage(ctx, id, img); err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) attachImage(ctx context.Context, propertyID string, img ImageInput) error {
	if img.ID == "" || IsTempImageID(img.ID) {
		query := `
			INSERT INTO property_images (id, property_id, url, alt, sort_order)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := r.pool.Exec(ctx, query, NewID(), propertyID, img.URL, img.Alt, img.SortOrder); err != nil {
			return fmt.Errorf("properties: insert image: %w", err)
		}
		return nil
	}
	query := `
		UPDATE property_images SET property_id = $1, sort_order = $2 WHERE id = $3
	`
	ct, err := r.pool.Exec(ctx, query, propertyID, img.SortOrder, img.ID)
	if err != nil {
		return fmt.Errorf("properties: link image: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Property, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Property, error) {
	return r.getWhere(ctx, "slug = $1", slug)
}

func (r *PostgresRepository) getWhere(ctx context.Context, where string, arg any) (*Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE `+where, arg)
	p, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("properties: select failed: %w", err)
	}

	images, err := r.imagesFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*Property, error) {
	var (
		conds []string
		args  []any
	)
	if !f.IncludeArchived {
		conds = append(conds, "archived = FALSE")
	}
	if f.City != "" {
		args = append(args, f.City)
		conds = append(conds, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.LeaseOrSale != "" {
		args = append(args, string(f.LeaseOrSale))
		conds = append(conds, fmt.Sprintf("(lease_or_sale = $%d OR lease_or_sale = 'Both')", len(args)))
	}
	if f.MinSquareFeet > 0 {
		args = append(args, f.MinSquareFeet)
		conds = append(conds, fmt.Sprintf("square_feet >= $%d", len(args)))
	}
	if f.MaxSquareFeet > 0 {
		args = append(args, f.MaxSquareFeet)
		conds = append(conds, fmt.Sprintf("square_feet <= $%d", len(args)))
	}
	if f.FeaturedOnly {
		conds = append(conds, "featured = TRUE")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR city ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("properties: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Property
	ids := make([]string, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("properties: scan failed: %w", err)
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("properties: list rows: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	images, err := r.imagesForAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range out {
		p.Images = images[p.ID]
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, in *PropertyInput) (*Property, error) {
	var currentTitle, currentSlug string
	err := r.pool.QueryRow(ctx, `SELECT title, slug FROM properties WHERE id = $1`, id).
		Scan(&currentTitle, &currentSlug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("properties: select for update: %w", err)
	}

	slug := currentSlug
	if in.Title != currentTitle {
		slugs, err := r.slugs(ctx, id)
		if err != nil {
			return nil, err
		}
		slug = GenerateSlug(in.Title, slugs)
	}

	availableDate, err := in.ParsedAvailableDate()
	if err != nil {
		return nil, fmt.Errorf("properties: parse available date: %w", err)
	}
	highlights, err := json.Marshal(emptyIfNil(in.Highlights))
	if err != nil {
		return nil, fmt.Errorf("properties: marshal highlights: %w", err)
	}

	query := `
		UPDATE properties SET
			title = $2, slug = $3, address = $4, city = $5, state = $6, zip = $7,
			description = $8, square_feet = $9, clear_height = NULLIF($10, ''),
			dock_doors = $11, drive_in_doors = $12, acreage = NULLIF($13, 0),
			lease_or_sale = $14, price_or_rate = NULLIF($15, ''),
			available_date = COALESCE($16, available_date),
			highlights = $17, status = $18, featured = $19, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, query,
		id, in.Title, slug, in.Address, in.City, in.State, in.Zip,
		in.Description, in.SquareFeet, in.ClearHeight,
		in.DockDoors, in.DriveInDoors, in.Acreage,
		string(in.LeaseOrSale), in.PriceOrRate, availableDate,
		highlights, string(in.Status), in.Featured,
	); err != nil {
		return nil, fmt.Errorf("properties: update failed: %w", err)
	}

	for _, img := range in.Images {
		if err := r.attachImage(ctx, id, img); err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) SetFlags(ctx context.Context, id string, patch FlagPatch) (*Property, error) {
	var (
		sets []string
		args = []any{id}
	)
	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.Featured != nil {
		args = append(args, *patch.Featured)
		sets = append(sets, fmt.Sprintf("featured = $%d", len(args)))
	}
	if patch.Archived != nil {
		args = append(args, *patch.Archived)
		sets = append(sets, fmt.Sprintf("archived = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := "UPDATE properties SET " + strings.Join(sets, ", ") + ", updated_at = now() WHERE id = $1"
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("properties: patch failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrPropertyNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("properties: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM properties WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("properties: existence check: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) AddImage(ctx context.Context, propertyID, url, alt string) (*Image, error) {
	img := Image{ID: NewID(), PropertyID: propertyID, URL: url, Alt: alt}
	query := `
		INSERT INTO property_images (id, property_id, url, alt, sort_order)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(sort_order), -1) + 1 FROM property_images WHERE property_id = $2))
		RETURNING sort_order
	`
	if err := r.pool.QueryRow(ctx, query, img.ID, propertyID, url, alt).Scan(&img.SortOrder); err != nil {
		return nil, fmt.Errorf("properties: insert image: %w", err)
	}
	return &img, nil
}

func (r *PostgresRepository) slugs(ctx context.Context, excludeID string) ([]string, error) {
	query := `SELECT slug FROM properties`
	args := []any{}
	if excludeID != "" {
		query += ` WHERE id <> $1`
		args = append(args, excludeID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("properties: load slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("properties: scan slug: %w", err)
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

func (r *PostgresRepository) imagesFor(ctx context.Context, propertyID string) ([]Image, error) {
	images, err := r.imagesForAll(ctx, []string{propertyID})
	if err != nil {
		return nil, err
	}
	return images[propertyID], nil
}

func (r *PostgresRepository) imagesForAll(ctx context.Context, propertyIDs []string) (map[string][]Image, error) {
	query := `
		SELECT id, property_id, url, COALESCE(alt, ''), sort_order
		FROM property_images
		WHERE property_id = ANY($1)
		ORDER BY sort_order
	`
	rows, err := r.pool.Query(ctx, query, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("properties: load images: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Image)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.URL, &img.Alt, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("properties: scan image: %w", err)
		}
		out[img.PropertyID] = append(out[img.PropertyID], img)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*Property, error) {
	var (
		p          Property
		available  *time.Time
		highlights []byte
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Address, &p.City, &p.State, &p.Zip, &p.Description,
		&p.SquareFeet, &p.ClearHeight, &p.DockDoors, &p.DriveInDoors,
		&p.Acreage, &p.LeaseOrSale, &p.PriceOrRate,
		&available, &highlights, &p.Status, &p.Featured, &p.Archived, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.AvailableDate = available
	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &p.Highlights); err != nil {
			return nil, fmt.Errorf("unmarshal highlights: %w", err)
		}
	}
	return &p, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ Repository = (*PostgresRepository)(nil)
