package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kellemar/text-analyzer/internal/core/domain"
	"github.com/kellemar/text-analyzer/internal/core/ports"
)

const accessTokenBytes = 32

// AuthUseCase issues opaque bearer tokens and validates them against
// their stored one-way hash. No refresh, no rotation; expiry is
// absolute from issuance.
type AuthUseCase struct {
	users      ports.UserRepository
	sessions   ports.SessionRepository
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthUseCase(users ports.UserRepository, sessions ports.SessionRepository, sessionTTL time.Duration) *AuthUseCase {
	return &AuthUseCase{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *AuthUseCase) Signup(ctx context.Context, creds domain.Credentials, meta domain.SessionMeta) (*domain.User, *domain.IssuedSession, error) {
	email, err := normalizeCredentials(&creds)
	if err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    uc.now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := uc.issueSession(ctx, user.ID, meta)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, creds domain.Credentials, meta domain.SessionMeta) (*domain.User, *domain.IssuedSession, error) {
	email, err := normalizeCredentials(&creds)
	if err != nil {
		return nil, nil, err
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("unknown email or wrong password"))
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("unknown email or wrong password"))
	}

	session, err := uc.issueSession(ctx, user.ID, meta)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Authenticate resolves a bearer token by hash and enforces expiry.
// A matching hash on an expired session is still rejected.
func (uc *AuthUseCase) Authenticate(ctx context.Context, accessToken string) (*domain.Session, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("missing bearer token"))
	}

	session, err := uc.sessions.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("invalid bearer token"))
		}
		return nil, err
	}
	if session.Expired(uc.now()) {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("session expired"))
	}
	return session, nil
}

func (uc *AuthUseCase) issueSession(ctx context.Context, userID string, meta domain.SessionMeta) (*domain.IssuedSession, error) {
	raw := make([]byte, accessTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	token := hex.EncodeToString(raw)

	session := &domain.Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		AccessTokenHash: hashToken(token),
		UserAgent:       meta.UserAgent,
		IPAddress:       meta.IPAddress,
		ExpiresAt:       uc.now().Add(uc.sessionTTL),
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &domain.IssuedSession{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

func normalizeCredentials(creds *domain.Credentials) (string, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || !strings.Contains(email, "@") {
		return "", domain.WrapError(domain.ErrInvalidInput, "validate credentials", errors.New("valid email is required"))
	}
	if len(creds.Password) < 8 {
		return "", domain.WrapError(domain.ErrInvalidInput, "validate credentials", errors.New("password must be at least 8 characters"))
	}
	return email, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
