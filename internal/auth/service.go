package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/ids"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 14 * 24 * time.Hour
)

// Claims are the verified contents of an access token.
type Claims struct {
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens and owns the refresh rotation chain.
type Service struct {
	store  Store
	secret []byte
	issuer string

	accessTTL   time.Duration
	refreshTTL  time.Duration
	staticToken string
	now         func() time.Time

	// rotateMu serializes check-then-revoke-then-issue so two concurrent
	// refresh calls presenting the same token cannot both succeed.
	rotateMu sync.Mutex
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) { s.issuer = strings.TrimSpace(issuer) }
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithStaticToken enables the shared-secret bearer bypass used by trusted
// integrations. The static token still carries a tenant scope at the
// HTTP layer.
func WithStaticToken(token string) ServiceOption {
	return func(s *Service) { s.staticToken = strings.TrimSpace(token) }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the auth service. The signing secret is required.
func NewService(store Store, secret string, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	svc := &Service{
		store:      store,
		secret:     []byte(secret),
		now:        time.Now,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login verifies credentials within the tenant scope and issues a fresh
// token pair. Every failure mode collapses to ErrInvalidCredentials so the
// response does not reveal which part was wrong.
func (s *Service) Login(ctx context.Context, email, password, tenantID string) (TokenPair, *User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	user, err := s.store.Users(ctx).FindByEmail(ctx, tenantID, email)
	if err != nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if user.Status != userStatusActive {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	pair, err := s.mint(ctx, user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, user, nil
}

// Refresh rotates a presented refresh token: the old token is revoked and a
// new pair issued as one serialized step. Re-use of an already-rotated
// token fails, which is how replay is detected.
func (s *Service) Refresh(ctx context.Context, raw string) (TokenPair, *User, error) {
	s.rotateMu.Lock()
	defer s.rotateMu.Unlock()

	tokenID, secret, err := splitRefreshToken(raw)
	if err != nil {
		return TokenPair{}, nil, ErrInvalidToken
	}
	tokens := s.store.RefreshTokens(ctx)
	rec, err := tokens.Find(ctx, tokenID)
	if err != nil {
		return TokenPair{}, nil, ErrInvalidToken
	}
	if rec.Revoked {
		return TokenPair{}, nil, ErrInvalidToken
	}
	if s.now().After(rec.ExpiresAt) {
		return TokenPair{}, nil, ErrTokenExpired
	}
	if !secureCompareHash(rec.TokenHash, secret) {
		// A known id with a wrong secret means the token leaked or was
		// guessed. Burn the whole session set for that user.
		_ = tokens.MarkRevokedByUser(ctx, rec.UserID)
		return TokenPair{}, nil, ErrInvalidToken
	}
	user, err := s.store.Users(ctx).Find(ctx, rec.UserID)
	if err != nil {
		return TokenPair{}, nil, ErrInvalidToken
	}
	if err := tokens.MarkRevoked(ctx, rec.ID); err != nil {
		return TokenPair{}, nil, err
	}
	pair, err := s.mint(ctx, user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, user, nil
}

// Logout revokes a refresh token. Revoking an unknown or already-revoked
// token is not an error.
func (s *Service) Logout(ctx context.Context, raw string) error {
	tokenID, _, err := splitRefreshToken(raw)
	if err != nil {
		return nil
	}
	tokens := s.store.RefreshTokens(ctx)
	rec, err := tokens.Find(ctx, tokenID)
	if err != nil {
		return nil
	}
	if rec.Revoked {
		return nil
	}
	return tokens.MarkRevoked(ctx, rec.ID)
}

// VerifyAccessToken checks signature and expiry. Expiry and signature
// failures are distinguishable for logging even though both surface as 401.
func (s *Service) VerifyAccessToken(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyStatic reports whether token matches the configured shared secret.
func (s *Service) VerifyStatic(token string) bool {
	if s.staticToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.staticToken), []byte(token)) == 1
}

// SeedAdmin ensures an admin account exists for the tenant. Seeding an
// existing account is a no-op.
func (s *Service) SeedAdmin(ctx context.Context, email, password, tenantID string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return errors.New("auth: admin email and password are required")
	}
	users := s.store.Users(ctx)
	if _, err := users.FindByEmail(ctx, tenantID, email); err == nil {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	return users.Create(ctx, &User{
		ID:           ids.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		Status:       userStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *Service) mint(ctx context.Context, user *User) (TokenPair, error) {
	now := s.now().UTC()
	accessExp := now.Add(s.accessTTL)
	claims := Claims{
		Role:     user.Role,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.Email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return TokenPair{}, err
	}

	raw, rec, err := s.generateRefreshToken(user, now)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.RefreshTokens(ctx).Create(ctx, rec); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     raw,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *Service) generateRefreshToken(user *User, now time.Time) (string, *RefreshToken, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", nil, err
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)
	tokenID := ids.New()
	sum := sha256.Sum256([]byte(secret))
	rec := &RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		TenantID:  user.TenantID,
		TokenHash: hex.EncodeToString(sum[:]),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	return tokenID + "." + secret, rec, nil
}

func splitRefreshToken(raw string) (id, secret string, err error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || id == "" || secret == "" {
		return "", "", errors.New("invalid refresh token format")
	}
	return id, secret, nil
}

func secureCompareHash(expectedHash, secret string) bool {
	sum := sha256.Sum256([]byte(secret))
	actual := hex.EncodeToString(sum[:])
	if len(expectedHash) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expectedHash), []byte(actual)) == 1
}
