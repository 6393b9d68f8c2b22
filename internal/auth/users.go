package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plotline/plotline/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

// UserRecord is a stored account. Password holds the bcrypt hash.
type UserRecord struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

// UserStore persists accounts. CreateUser returns ErrEmailTaken for a
// duplicate email; lookups return ErrUserNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetUserByID(ctx context.Context, id string) (*UserRecord, error)
}

// MemoryUsers is a UserStore for servers running without a database.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]UserRecord
	byEmail map[string]string
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[string]UserRecord),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryUsers) CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, ErrEmailTaken
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return &u, nil
}

func (m *MemoryUsers) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := m.byID[id]
	return &u, nil
}

func (m *MemoryUsers) GetUserByID(ctx context.Context, id string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// PostgresUsers is a UserStore over the users table.
type PostgresUsers struct {
	queries *db.Queries
}

func NewPostgresUsers(queries *db.Queries) *PostgresUsers {
	return &PostgresUsers{queries: queries}
}

func (p *PostgresUsers) CreateUser(ctx context.Context, u UserRecord) (*UserRecord, error) {
	dbUser, err := p.queries.CreateUser(ctx, db.CreateUserParams{
		ID:          u.ID,
		Email:       u.Email,
		Password:    u.Password,
		DisplayName: u.DisplayName,
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return dbUserToRecord(dbUser), nil
}

func (p *PostgresUsers) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	dbUser, err := p.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return dbUserToRecord(dbUser), nil
}

func (p *PostgresUsers) GetUserByID(ctx context.Context, id string) (*UserRecord, error) {
	dbUser, err := p.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return dbUserToRecord(dbUser), nil
}

func dbUserToRecord(u db.User) *UserRecord {
	return &UserRecord{
		ID:          u.ID,
		Email:       u.Email,
		Password:    u.Password,
		DisplayName: u.DisplayName,
	}
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
