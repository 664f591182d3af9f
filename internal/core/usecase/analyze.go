package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kellemar/text-analyzer/internal/core/domain"
	"github.com/kellemar/text-analyzer/internal/core/ports"
)

// AnalyzeArticleUseCase runs the content-to-structured-result pipeline:
// size gate, text extraction, best-effort original upload, provider
// call, fire-and-forget article log.
type AnalyzeArticleUseCase struct {
	extractor      ports.TextExtractor
	provider       ports.AnalysisProvider
	storage        ports.ObjectStorage
	sink           ports.ArticleSink
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewAnalyzeArticleUseCase(
	extractor ports.TextExtractor,
	provider ports.AnalysisProvider,
	storage ports.ObjectStorage,
	sink ports.ArticleSink,
	maxUploadBytes int64,
	logger *slog.Logger,
) *AnalyzeArticleUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeArticleUseCase{
		extractor:      extractor,
		provider:       provider,
		storage:        storage,
		sink:           sink,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (uc *AnalyzeArticleUseCase) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	// The size boundary holds before any extraction or provider work.
	if uc.maxUploadBytes > 0 && int64(len(req.File)) > uc.maxUploadBytes {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"validate upload",
			fmt.Errorf("file is %d bytes, limit is %d", len(req.File), uc.maxUploadBytes),
		)
	}

	text := strings.TrimSpace(req.Text)
	uploadedFile := ""

	if len(req.File) > 0 {
		extracted, err := uc.extractor.Extract(ctx, req.Filename, req.File)
		if err != nil {
			return nil, err
		}
		uploadedFile = uc.storeOriginal(ctx, req.Filename, req.File)

		if text == "" {
			text = extracted
		} else {
			text = text + "\n\n" + extracted
		}
	}

	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate request", errors.New("no text or file supplied"))
	}

	result, err := uc.provider.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	result.EnsureArrays()

	uc.sink.Store(domain.ArticleLog{
		ID:            uuid.NewString(),
		Summary:       result.ArticleSummary,
		Nationalities: result.Nationalities,
		Organizations: result.Organizations,
		People:        result.People,
		Language:      result.Language,
		OriginalText:  text,
		UploadedFile:  uploadedFile,
		CreatedAt:     time.Now().UTC(),
	})

	return result, nil
}

// storeOriginal uploads the raw file bytes best-effort: a content-store
// outage omits the stored reference, never the analysis.
func (uc *AnalyzeArticleUseCase) storeOriginal(ctx context.Context, filename string, data []byte) string {
	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, bytes.NewReader(data)); err != nil {
		uc.logger.Warn("store original upload", "key", key, "error", err)
		return ""
	}
	return key
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
