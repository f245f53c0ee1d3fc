package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/auth"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("create table if not exists users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create table if not exists refresh_tokens").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create index if not exists refresh_tokens_user_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserCreateAndFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	user := &auth.User{
		ID:           "01USER",
		TenantID:     "main",
		Email:        "admin@sewell.example",
		PasswordHash: "$2a$10$hash",
		Role:         auth.RoleAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec("insert into users").
		WithArgs(user.ID, user.TenantID, user.Email, user.PasswordHash, user.Role, user.Status, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := store.Users(context.Background()).Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cols := []string{"id", "tenant_id", "email", "password_hash", "role", "status", "created_at", "updated_at"}
	mock.ExpectQuery("select id, tenant_id, email, password_hash, role, status, created_at, updated_at.*from users where tenant_id=\\$1 and lower\\(email\\)").
		WithArgs(user.TenantID, user.Email).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(user.ID, user.TenantID, user.Email, user.PasswordHash, user.Role, user.Status, now, now))

	got, err := store.Users(context.Background()).FindByEmail(context.Background(), user.TenantID, user.Email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != user.ID || got.TenantID != "main" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserFindMissing(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("from users where id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "email", "password_hash", "role", "status", "created_at", "updated_at"}))

	if _, err := store.Users(context.Background()).Find(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tok := &auth.RefreshToken{
		ID:        "01TOKEN",
		UserID:    "01USER",
		TenantID:  "main",
		TokenHash: "deadbeef",
		IssuedAt:  now,
		ExpiresAt: now.Add(14 * 24 * time.Hour),
	}

	mock.ExpectExec("insert into refresh_tokens").
		WithArgs(tok.ID, tok.UserID, tok.TenantID, tok.TokenHash, tok.IssuedAt, tok.ExpiresAt, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := store.RefreshTokens(context.Background()).Create(context.Background(), tok); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cols := []string{"id", "user_id", "tenant_id", "token_hash", "issued_at", "expires_at", "revoked"}
	mock.ExpectQuery("from refresh_tokens where id").
		WithArgs(tok.ID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(tok.ID, tok.UserID, tok.TenantID, tok.TokenHash, tok.IssuedAt, tok.ExpiresAt, false))
	got, err := store.RefreshTokens(context.Background()).Find(context.Background(), tok.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Revoked {
		t.Fatal("fresh token reported revoked")
	}

	mock.ExpectExec("update refresh_tokens set revoked=true where id").
		WithArgs(tok.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.RefreshTokens(context.Background()).MarkRevoked(context.Background(), tok.ID); err != nil {
		t.Fatalf("MarkRevoked: %v", err)
	}

	mock.ExpectExec("update refresh_tokens set revoked=true where id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.RefreshTokens(context.Background()).MarkRevoked(context.Background(), "missing"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	mock.ExpectExec("update refresh_tokens set revoked=true where user_id").
		WithArgs(tok.UserID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	if err := store.RefreshTokens(context.Background()).MarkRevokedByUser(context.Background(), tok.UserID); err != nil {
		t.Fatalf("MarkRevokedByUser: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
