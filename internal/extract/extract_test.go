package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":   doc,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml", "word/_rels/document.xml.rels"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromDocx(t *testing.T) {
	data := buildDocx(t, "The tenant pays a security deposit.", "Notice period is one month.")
	text, mimeType, err := Text(context.Background(), data, "application/octet-stream", "lease.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if mimeType != MimeDOCX {
		t.Fatalf("expected docx mime, got %s", mimeType)
	}
	if !strings.Contains(text, "security deposit") || !strings.Contains(text, "\nNotice period") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextFromPlain(t *testing.T) {
	text, mimeType, err := Text(context.Background(), []byte("  Rent is due monthly.\n"), "", "lease.txt")
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	if mimeType != MimeText || text != "Rent is due monthly." {
		t.Fatalf("unexpected result %q (%s)", text, mimeType)
	}
}

func TestTextFromHTML(t *testing.T) {
	page := `<html><head><title>Lease</title></head><body><article>` +
		`<h1>Residential Lease</h1>` +
		`<p>The tenant shall pay the monthly rent on or before the fifth day of each month, without deduction.</p>` +
		`<p>A security deposit equal to two months of rent is payable before the tenant moves into the premises.</p>` +
		`<p>Either party may end this agreement by giving one month of written notice to the other party.</p>` +
		`</article></body></html>`
	text, mimeType, err := Text(context.Background(), []byte(page), "text/html; charset=utf-8", "lease.html")
	if err != nil {
		t.Fatalf("extract html: %v", err)
	}
	if mimeType != MimeHTML {
		t.Fatalf("expected html mime, got %s", mimeType)
	}
	if !strings.Contains(text, "security deposit") || strings.Contains(text, "<p>") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextRejectsUnsupported(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	_, mimeType, err := Text(context.Background(), png, "image/png", "scan.png")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if mimeType != "image/png" {
		t.Fatalf("unexpected mime %s", mimeType)
	}
}

func TestTextRejectsBareZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, _, err := Text(context.Background(), buf.Bytes(), "application/zip", "notes.zip"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestTextEmpty(t *testing.T) {
	if _, _, err := Text(context.Background(), []byte("   \n"), "text/plain", "blank.txt"); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestTextCorruptPDF(t *testing.T) {
	_, mimeType, err := Text(context.Background(), []byte("not really a pdf"), "", "lease.pdf")
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
	if mimeType != MimePDF {
		t.Fatalf("expected extension fallback to pdf, got %s", mimeType)
	}
}

func TestDetectTypeFromContent(t *testing.T) {
	if got := DetectType([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), "text/plain", "upload.bin"); got != MimePDF {
		t.Fatalf("expected pdf from magic bytes, got %s", got)
	}
	if got := DetectType([]byte("<!DOCTYPE html><html><body>x</body></html>"), "", "upload"); got != MimeHTML {
		t.Fatalf("expected html from sniffing, got %s", got)
	}
}

func TestTextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Text(ctx, []byte("x"), "text/plain", "a.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
