package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kellemar/text-analyzer/internal/core/ports"
)

const defaultExportLimit = 500

// Service produces XLSX workbooks from stored analysis logs.
type Service struct {
	articles ports.ArticleLogRepository
	logger   *slog.Logger
}

func NewService(articles ports.ArticleLogRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{articles: articles, logger: logger}
}

// ExportArticlesXLSX returns a workbook with the most recent analysis logs,
// newest first. limit <= 0 applies the default.
func (s *Service) ExportArticlesXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()
	if limit <= 0 {
		limit = defaultExportLimit
	}

	logs, err := s.articles.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query article logs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Articles"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Analyzed At",
		"Summary",
		"Nationalities",
		"Organizations",
		"People",
		"Language",
		"Uploaded File",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, entry := range logs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, entry.CreatedAt.Format("2006-01-02 15:04"))
		write(2, truncate(strings.Join(entry.Summary, " "), 280))
		write(3, strings.Join(entry.Nationalities, ", "))
		write(4, strings.Join(entry.Organizations, ", "))
		write(5, strings.Join(entry.People, ", "))
		write(6, strings.Join(entry.Language, ", "))
		write(7, entry.UploadedFile)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 60)
	_ = f.SetColWidth(sheet, "C", "E", 28)
	_ = f.SetColWidth(sheet, "F", "F", 18)
	_ = f.SetColWidth(sheet, "G", "G", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(logs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
