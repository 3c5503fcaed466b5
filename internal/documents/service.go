package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"legallens-backend/internal/analyses"
	"legallens-backend/internal/extract"
	"legallens-backend/internal/shared/util"
)

const maxUploadSize = 10 << 20 // 10MB

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTooLarge     = errors.New("file too large")
)

// Service extracts text from an uploaded agreement and analyzes it. Nothing is stored.
type Service struct {
	Analyses *analyses.Service
}

// NewService constructs a Service.
func NewService(a *analyses.Service) *Service {
	return &Service{Analyses: a}
}

// Analyze reads the upload, extracts its text, truncates it to the document
// limit and runs risk analysis and summarization over the result.
func (s *Service) Analyze(ctx context.Context, fileName, declaredType string, r io.Reader) (Report, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return Report{}, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return Report{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if n > maxUploadSize {
		return Report{}, ErrTooLarge
	}
	data := buf.Bytes()

	text, mimeType, err := extract.Text(ctx, data, declaredType, name)
	if err != nil {
		return Report{}, err
	}
	text, truncated := util.Truncate(text, analyses.MaxDocumentLength)

	risks, summary, err := s.Analyses.AnalyzeDocument(ctx, text)
	if err != nil {
		return Report{}, err
	}

	return Report{
		FileName:    name,
		MimeType:    mimeType,
		SizeBytes:   n,
		ContentHash: util.ContentHash(data),
		Characters:  len([]rune(text)),
		Truncated:   truncated,
		Risks:       risks,
		Summary:     summary,
	}, nil
}
