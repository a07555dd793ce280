package docparse

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Dear candidate,</w:t></w:r></w:p>
    <w:p><w:r><w:t>we are pleased</w:t></w:r><w:r><w:t> to offer you the role.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	extractor := NewTextExtractor()
	text, err := extractor.Extract(buildDOCX(t, doc), KindDOCX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Dear candidate,\nwe are pleased to offer you the role."
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestExtractDOCXRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := NewTextExtractor().Extract([]byte("not a zip"), KindDOCX); err == nil {
		t.Fatal("expected an error for a non-zip payload")
	}
}

func TestExtractLegacyDocUnsupported(t *testing.T) {
	t.Parallel()

	if _, err := NewTextExtractor().Extract([]byte{0xd0, 0xcf}, KindDOC); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
