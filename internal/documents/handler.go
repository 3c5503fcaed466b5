package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/analyses"
	"legallens-backend/internal/extract"
	"legallens-backend/internal/shared/server/middleware"
	"legallens-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Set(middleware.OperationKey, "documents.analyze")
	// Leave room for multipart framing around the file part.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 10MB", nil)
			return
		}
		respond.Validation(c, "file is required", nil)
		return
	}
	if fileHeader.Size > maxUploadSize {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 10MB", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Validation(c, "unable to read file", nil)
		return
	}
	defer file.Close()

	report, err := h.Svc.Analyze(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 10MB", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Validation(c, err.Error(), nil)
		case errors.Is(err, extract.ErrUnsupportedType):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", err.Error(), nil)
		case errors.Is(err, extract.ErrNoText), errors.Is(err, analyses.ErrInvalidDocument):
			respond.Error(c, http.StatusUnprocessableEntity, "no_text", "no readable text found in document", nil)
		default:
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "failed to read document", nil)
		}
		return
	}

	c.Set(middleware.OutcomeKey, report.Risks.RiskScore)
	respond.OK(c, report)
}
