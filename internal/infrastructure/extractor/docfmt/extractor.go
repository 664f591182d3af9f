// Package docfmt converts uploaded documents into UTF-8 plain text.
// Format is decided by file extension; anything unrecognized is
// rejected before any parsing happens.
package docfmt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

type Extractor struct {
	maxBytes int64
}

func New(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

func (e *Extractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return "", domain.WrapError(
			domain.ErrInvalidInput,
			"extract text",
			fmt.Errorf("file is %d bytes, limit is %d", len(data), e.maxBytes),
		)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".text":
		return extractPlainText(data)
	case ".docx":
		return extractDocx(data)
	case ".pdf":
		return extractPDF(data)
	default:
		return "", domain.WrapError(
			domain.ErrUnsupportedFormat,
			"extract text",
			fmt.Errorf("unrecognized extension %q", ext),
		)
	}
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.WrapError(domain.ErrInvalidInput, "decode text file", errors.New("content is not valid UTF-8"))
	}
	return strings.TrimSpace(string(data)), nil
}
