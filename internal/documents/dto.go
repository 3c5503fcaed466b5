package documents

import (
	"legallens-backend/internal/risks"
	"legallens-backend/internal/summary"
)

// Report is the outward-facing result of a document analysis.
type Report struct {
	FileName    string         `json:"fileName"`
	MimeType    string         `json:"mimeType"`
	SizeBytes   int64          `json:"sizeBytes"`
	ContentHash string         `json:"contentHash"`
	Characters  int            `json:"characters"`
	Truncated   bool           `json:"truncated"`
	Risks       risks.Result   `json:"risks"`
	Summary     summary.Result `json:"summary"`
}
