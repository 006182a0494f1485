package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository looks up back-office users.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	GetByID(ctx context.Context, id string) (*Admin, error)
}

// InMemoryAdminRepository backs development and tests.
type InMemoryAdminRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Admin
	byEmail map[string]*Admin
}

// NewInMemoryAdminRepository creates an empty in-memory repository.
func NewInMemoryAdminRepository() *InMemoryAdminRepository {
	return &InMemoryAdminRepository{
		byID:    make(map[string]*Admin),
		byEmail: make(map[string]*Admin),
	}
}

// Add stores an admin, minting an id when absent.
func (r *InMemoryAdminRepository) Add(admin *Admin) *Admin {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *admin
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Email = strings.ToLower(stored.Email)
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = &stored
	out := stored
	return &out
}

func (r *InMemoryAdminRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrAdminNotFound
	}
	out := *admin
	return &out, nil
}

func (r *InMemoryAdminRepository) GetByID(ctx context.Context, id string) (*Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.byID[id]
	if !ok {
		return nil, ErrAdminNotFound
	}
	out := *admin
	return &out, nil
}

// PostgresAdminRepository stores admins in the relational database.
type PostgresAdminRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAdminRepository initializes a repo backed by pgxpool.
func NewPostgresAdminRepository(pool *pgxpool.Pool) *PostgresAdminRepository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return &PostgresAdminRepository{pool: pool}
}

func (r *PostgresAdminRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.getWhere(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *PostgresAdminRepository) GetByID(ctx context.Context, id string) (*Admin, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *PostgresAdminRepository) getWhere(ctx context.Context, where string, arg any) (*Admin, error) {
	var admin Admin
	query := `SELECT id, email, name, password_hash, created_at FROM admins WHERE ` + where
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: select admin: %w", err)
	}
	return &admin, nil
}

var (
	_ AdminRepository = (*InMemoryAdminRepository)(nil)
	_ AdminRepository = (*PostgresAdminRepository)(nil)
)
