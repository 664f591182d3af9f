package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

type articleRepoFake struct {
	logs      []domain.ArticleLog
	err       error
	lastLimit int
}

func (r *articleRepoFake) Create(ctx context.Context, log *domain.ArticleLog) error { return nil }

func (r *articleRepoFake) List(ctx context.Context, limit int) ([]domain.ArticleLog, error) {
	r.lastLimit = limit
	return r.logs, r.err
}

func TestExportArticlesXLSX(t *testing.T) {
	repo := &articleRepoFake{logs: []domain.ArticleLog{
		{
			ID:            "a1",
			Summary:       []string{"First half.", "Second half."},
			Nationalities: []string{"French", "German"},
			Organizations: []string{"CERN"},
			People:        []string{"Marie Curie"},
			Language:      []string{"English"},
			UploadedFile:  "abc_article.docx",
			CreatedAt:     time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		},
	}}
	svc := NewService(repo, nil)

	data, err := svc.ExportArticlesXLSX(context.Background(), 0)
	if err != nil {
		t.Fatalf("ExportArticlesXLSX() error = %v", err)
	}
	if repo.lastLimit != defaultExportLimit {
		t.Fatalf("expected default limit %d, got %d", defaultExportLimit, repo.lastLimit)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Articles")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[1][1] != "First half. Second half." {
		t.Fatalf("unexpected summary cell %q", rows[1][1])
	}
	if rows[1][2] != "French, German" {
		t.Fatalf("unexpected nationalities cell %q", rows[1][2])
	}
}

func TestExportRepositoryFailure(t *testing.T) {
	repo := &articleRepoFake{err: errors.New("db down")}
	svc := NewService(repo, nil)

	if _, err := svc.ExportArticlesXLSX(context.Background(), 10); err == nil {
		t.Fatal("expected error when repository fails")
	}
}
