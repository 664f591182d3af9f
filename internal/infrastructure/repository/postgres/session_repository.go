package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

// SessionRepository stores sessions keyed by the one-way hash of their
// access token. Raw tokens never reach this layer.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, access_token_hash, user_agent, ip_address, expires_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, session.ID, session.UserID, session.AccessTokenHash, session.UserAgent, session.IPAddress, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, access_token_hash, user_agent, ip_address, expires_at
FROM sessions
WHERE access_token_hash = $1
`, tokenHash)

	var session domain.Session
	err := row.Scan(
		&session.ID, &session.UserID, &session.AccessTokenHash,
		&session.UserAgent, &session.IPAddress, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get session by token hash", errors.New("no matching session"))
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &session, nil
}
