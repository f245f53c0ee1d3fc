package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/auth"
)

const pgErrUniqueViolation = "23505"

// Store backs the auth subsystem with Postgres. Dealer collections stay on
// the file store; only accounts and refresh tokens need relational storage.
type Store struct {
	db *sql.DB
}

var _ auth.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection (used by tests).
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// EnsureSchema creates the auth tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`create table if not exists users (
			id text primary key,
			tenant_id text not null,
			email text not null,
			password_hash text not null,
			role text not null,
			status text not null,
			created_at timestamptz not null default now(),
			updated_at timestamptz not null default now(),
			unique (tenant_id, email)
		)`,
		`create table if not exists refresh_tokens (
			id text primary key,
			user_id text not null references users(id) on delete cascade,
			tenant_id text not null,
			token_hash text not null,
			issued_at timestamptz not null,
			expires_at timestamptz not null,
			revoked boolean not null default false
		)`,
		`create index if not exists refresh_tokens_user_idx on refresh_tokens(user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Users(ctx context.Context) auth.UserStore                 { return (*pgUsers)(s) }
func (s *Store) RefreshTokens(ctx context.Context) auth.RefreshTokenStore { return (*pgTokens)(s) }

type pgUsers Store

func (s *pgUsers) Create(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users (id, tenant_id, email, password_hash, role, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, u.ID, u.TenantID, u.Email, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *pgUsers) Find(ctx context.Context, id string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		select id, tenant_id, email, password_hash, role, status, created_at, updated_at
		from users where id=$1
	`, id))
}

func (s *pgUsers) FindByEmail(ctx context.Context, tenantID, email string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		select id, tenant_id, email, password_hash, role, status, created_at, updated_at
		from users where tenant_id=$1 and lower(email)=lower($2)
	`, tenantID, email))
}

func (s *pgUsers) scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type pgTokens Store

func (s *pgTokens) Create(ctx context.Context, tok *auth.RefreshToken) error {
	_, err := s.db.ExecContext(ctx, `
		insert into refresh_tokens (id, user_id, tenant_id, token_hash, issued_at, expires_at, revoked)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, tok.ID, tok.UserID, tok.TenantID, tok.TokenHash, tok.IssuedAt, tok.ExpiresAt, tok.Revoked)
	return err
}

func (s *pgTokens) Find(ctx context.Context, id string) (*auth.RefreshToken, error) {
	var tok auth.RefreshToken
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, tenant_id, token_hash, issued_at, expires_at, revoked
		from refresh_tokens where id=$1
	`, id).Scan(&tok.ID, &tok.UserID, &tok.TenantID, &tok.TokenHash, &tok.IssuedAt, &tok.ExpiresAt, &tok.Revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *pgTokens) MarkRevoked(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `update refresh_tokens set revoked=true where id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *pgTokens) MarkRevokedByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `update refresh_tokens set revoked=true where user_id=$1`, userID)
	return err
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
