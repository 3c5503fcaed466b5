// Package extract pulls plain text out of uploaded agreements.
package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/h2non/filetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeHTML = "text/html"
	MimeText = "text/plain"
	mimeZip  = "application/zip"
)

var (
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrNoText          = errors.New("document contains no text")
)

// DetectType identifies the document type from its content, falling back to
// the declared content type and then the file extension.
func DetectType(data []byte, declared, fileName string) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		switch kind.MIME.Value {
		case MimePDF, MimeDOCX:
			return kind.MIME.Value
		case mimeZip:
			if strings.EqualFold(filepath.Ext(fileName), ".docx") {
				return MimeDOCX
			}
			return mimeZip
		default:
			return kind.MIME.Value
		}
	}

	switch clean := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0])); clean {
	case MimePDF, MimeDOCX, MimeHTML, MimeText:
		return clean
	case "application/xhtml+xml":
		return MimeHTML
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".html", ".htm":
		return MimeHTML
	case ".txt", ".md", ".text":
		return MimeText
	}

	return strings.Split(http.DetectContentType(data), ";")[0]
}

// Text extracts text from an in-memory payload. It returns the detected type
// alongside the text.
func Text(ctx context.Context, data []byte, declared, fileName string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	mimeType := DetectType(data, declared, fileName)

	var (
		text string
		err  error
	)
	switch mimeType {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimeHTML:
		text, err = extractHTML(data, fileName)
	case MimeText:
		text, err = extractPlain(data)
	default:
		return "", mimeType, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	if err != nil {
		return "", mimeType, fmt.Errorf("extract %s: %w", mimeType, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", mimeType, ErrNoText
	}
	return text, mimeType, nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer r.Close()
	return stripDocxXML(r.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func extractHTML(data []byte, fileName string) (string, error) {
	pageURL := &url.URL{Scheme: "file", Path: "/" + filepath.Base(fileName)}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text is not valid UTF-8")
	}
	return string(data), nil
}
