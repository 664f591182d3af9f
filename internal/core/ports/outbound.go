package ports

import (
	"context"
	"io"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

// UserRepository persists and reads user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionRepository persists sessions and resolves them by token hash.
// Expired sessions are rejected by the caller, not purged here.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
}

// ArticleLogRepository appends analysis records and lists them for export.
type ArticleLogRepository interface {
	Create(ctx context.Context, log *domain.ArticleLog) error
	List(ctx context.Context, limit int) ([]domain.ArticleLog, error)
}

// ObjectStorage stores original uploaded documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor converts an uploaded document into UTF-8 plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// AnalysisProvider performs the structured extraction round trip against
// the language-model provider.
type AnalysisProvider interface {
	Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error)
}

// ArticleSink accepts article logs for background persistence. Store
// never blocks the request path and never reports failure to it.
type ArticleSink interface {
	Store(log domain.ArticleLog)
}
