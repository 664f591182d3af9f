package ports

import (
	"context"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

// ArticleAnalysisService is the inbound contract for the analysis pipeline.
type ArticleAnalysisService interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// AuthService issues and validates opaque bearer sessions.
type AuthService interface {
	Signup(ctx context.Context, creds domain.Credentials, meta domain.SessionMeta) (*domain.User, *domain.IssuedSession, error)
	Login(ctx context.Context, creds domain.Credentials, meta domain.SessionMeta) (*domain.User, *domain.IssuedSession, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.Session, error)
}
