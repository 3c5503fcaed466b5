package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/analyses"
	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/risks"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	holder := knowledge.NewHolder(knowledge.EmbeddedSource{})
	if _, err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("load knowledge: %v", err)
	}
	svc := NewService(&analyses.Service{KB: holder, Analyzer: risks.New(risks.DefaultSeverityTable())})
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func uploadRequest(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyzePlainText(t *testing.T) {
	text := "The security deposit is non-refundable. A late fee applies after the due date. Eviction follows any breach."
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, uploadRequest(t, "lease.txt", "text/plain", []byte(text)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		FileName    string `json:"fileName"`
		MimeType    string `json:"mimeType"`
		ContentHash string `json:"contentHash"`
		Characters  int    `json:"characters"`
		Truncated   bool   `json:"truncated"`
		Risks       struct {
			TotalRisks int `json:"total_risks"`
		} `json:"risks"`
		Summary struct {
			Summary string `json:"summary"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.FileName != "lease.txt" || payload.MimeType != "text/plain" || payload.Truncated {
		t.Fatalf("unexpected report %+v", payload)
	}
	if payload.Characters != len(text) || payload.ContentHash == "" {
		t.Fatalf("unexpected characters/hash %+v", payload)
	}
	if payload.Risks.TotalRisks != 4 {
		t.Fatalf("expected 4 risks, got %d", payload.Risks.TotalRisks)
	}
	if payload.Summary.Summary == "" {
		t.Fatalf("expected a summary")
	}
}

func TestAnalyzeTruncatesLongDocuments(t *testing.T) {
	text := strings.Repeat("Rent is due on the first day. ", 500)
	resp := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(resp, uploadRequest(t, "long.txt", "text/plain", []byte(text)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Characters int  `json:"characters"`
		Truncated  bool `json:"truncated"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Truncated || payload.Characters != analyses.MaxDocumentLength {
		t.Fatalf("expected truncation to %d, got %+v", analyses.MaxDocumentLength, payload)
	}
}

func TestAnalyzeRejections(t *testing.T) {
	r := newTestRouter(t)
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

	cases := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"missing file", httptest.NewRequest(http.MethodPost, "/api/v1/documents/analyze", nil), http.StatusBadRequest},
		{"unsupported", uploadRequest(t, "scan.png", "image/png", png), http.StatusUnsupportedMediaType},
		{"blank", uploadRequest(t, "blank.txt", "text/plain", []byte("   ")), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, tc.req)
		if resp.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.status, resp.Code, resp.Body.String())
		}
	}
}

func TestServiceRejectsOversizedUpload(t *testing.T) {
	svc := NewService(&analyses.Service{KB: knowledge.NewHolder(nil)})
	big := bytes.NewReader(make([]byte, maxUploadSize+1))
	if _, err := svc.Analyze(context.Background(), "big.txt", "text/plain", big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
