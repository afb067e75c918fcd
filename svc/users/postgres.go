package users

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/useradmin/pkg/pg"
)

// Migrations holds the goose migrations of the users table, under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// DB is the subset of *pgxpool.Pool used by PostgresService.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresService stores users in the users table.
type PostgresService struct {
	db    DB
	newID func() string
}

func NewPostgresService(db DB) *PostgresService {
	return &PostgresService{db: db, newID: uuid.NewString}
}

const (
	queryListUsers  = `SELECT id, name, type FROM users ORDER BY created_at, id`
	queryGetUser    = `SELECT id, name, email, type, COALESCE(lanr, '') FROM users WHERE id = $1`
	queryCreateUser = `INSERT INTO users (id, name, email, type, lanr) VALUES ($1, $2, $3, $4, NULLIF($5, ''))`
	queryUpdateUser = `UPDATE users SET name = $2, email = $3, type = $4, lanr = NULLIF($5, ''), updated_at = now() WHERE id = $1`
	queryDeleteUser = `DELETE FROM users WHERE id = $1`
)

func (s *PostgresService) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.Query(ctx, queryListUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var sm Summary
		err := row.Scan(&sm.ID, &sm.Name, &sm.Type)
		return sm, err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *PostgresService) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, queryGetUser, id).Scan(&u.ID, &u.Name, &u.Email, &u.Type, &u.Lanr)
	if pg.IsNotFoundError(err) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PostgresService) Create(ctx context.Context, d Draft) (string, error) {
	d, err := prepare(d)
	if err != nil {
		return "", err
	}
	id := s.newID()
	if _, err := s.db.Exec(ctx, queryCreateUser, id, d.Name, d.Email, d.Type, d.Lanr); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return "", errors.Join(ErrInvalidDraft, err)
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (s *PostgresService) Update(ctx context.Context, u User) error {
	d, err := prepare(u.Draft)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, queryUpdateUser, u.ID, d.Name, d.Email, d.Type, d.Lanr)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, queryDeleteUser, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
