package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores exposes repositories bound to one connection or transaction.
type Stores interface {
	Issues() IssueRepository
	Comments() CommentRepository
	Audit() AuditRepository
	Users() UserRepository
}

// Store is the issue store collaborator. WithTx runs fn inside a single
// transaction; returning an error from fn rolls every write back.
type Store interface {
	Stores
	WithTx(ctx context.Context, fn func(stores Stores) error) error
	Ping(ctx context.Context) error
}

// Repositories binds every repository to the same DBTX.
type Repositories struct {
	db DBTX
}

// NewRepositories wraps a pool or a transaction.
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{db: db}
}

func (r *Repositories) Issues() IssueRepository     { return NewIssueRepository(r.db) }
func (r *Repositories) Comments() CommentRepository { return NewCommentRepository(r.db) }
func (r *Repositories) Audit() AuditRepository      { return NewAuditRepository(r.db) }
func (r *Repositories) Users() UserRepository       { return NewUserRepository(r.db) }

type pgStore struct {
	*Repositories
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{Repositories: NewRepositories(pool), pool: pool}
}

func (s *pgStore) WithTx(ctx context.Context, fn func(stores Stores) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(NewRepositories(tx))
	})
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
