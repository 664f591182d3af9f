package docfmt

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create docx entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write docx entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close docx: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTxt(t *testing.T) {
	e := New(1 << 20)

	text, err := e.Extract(context.Background(), "article.txt", []byte("  hello world \n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "hello world" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
}

func TestExtractTxtRejectsInvalidUTF8(t *testing.T) {
	e := New(1 << 20)

	_, err := e.Extract(context.Background(), "bad.txt", []byte{0xff, 0xfe, 0x01})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractDocxTextRuns(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t xml:space="preserve"> run.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	e := New(1 << 20)

	text, err := e.Extract(context.Background(), "doc.docx", buildDocx(t, docXML))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "First paragraph.") {
		t.Fatalf("expected first paragraph text, got %q", text)
	}
	if !strings.Contains(text, "Second run.") {
		t.Fatalf("expected joined runs, got %q", text)
	}
	if !strings.Contains(text, "First paragraph.\nSecond run.") {
		t.Fatalf("expected paragraph break, got %q", text)
	}
}

func TestExtractDocxWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/styles.xml"); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	e := New(1 << 20)
	_, err := e.Extract(context.Background(), "doc.docx", buf.Bytes())
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := New(1 << 20)

	for _, name := range []string{"image.png", "archive.tar.gz", "noext"} {
		_, err := e.Extract(context.Background(), name, []byte("data"))
		if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
			t.Fatalf("expected ErrUnsupportedFormat for %q, got %v", name, err)
		}
	}
}

func TestExtractSizeGateBeforeParsing(t *testing.T) {
	e := New(16)

	_, err := e.Extract(context.Background(), "big.txt", bytes.Repeat([]byte("a"), 32))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
