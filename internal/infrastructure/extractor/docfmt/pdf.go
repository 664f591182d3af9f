package docfmt

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "open pdf", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract pdf text", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "read pdf text", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
