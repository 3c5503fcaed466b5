package analyses

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/shared/server/middleware"
	"legallens-backend/internal/shared/server/respond"
)

// Handler exposes the clause, risk and summary endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/explain", h.explain)
	rg.POST("/risks", h.risks)
	rg.POST("/summarize", h.summarize)
	rg.GET("/sample", h.sample)
}

func (h *Handler) explain(c *gin.Context) {
	c.Set(middleware.OperationKey, "explain")
	clause, ok := inputField(c, "clause")
	if !ok {
		invalid(c, "clause", MessageInvalidClause)
		return
	}

	res, err := h.Svc.Explain(c.Request.Context(), clause)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyClause):
			invalid(c, "clause", MessageEmptyClause)
		case errors.Is(err, ErrInvalidClause):
			invalid(c, "clause", MessageInvalidClause)
		default:
			respond.Internal(c, "failed to explain clause")
		}
		return
	}
	c.Set(middleware.OutcomeKey, Outcome(res))
	respond.OK(c, res)
}

func (h *Handler) risks(c *gin.Context) {
	c.Set(middleware.OperationKey, "risks")
	text, ok := inputField(c, "doc_text")
	if !ok {
		invalid(c, "doc_text", MessageInvalidDocument)
		return
	}

	res, err := h.Svc.Risks(c.Request.Context(), text)
	if err != nil {
		h.documentError(c, err)
		return
	}
	c.Set(middleware.OutcomeKey, res.RiskScore)
	respond.OK(c, res)
}

func (h *Handler) summarize(c *gin.Context) {
	c.Set(middleware.OperationKey, "summarize")
	text, ok := inputField(c, "doc_text")
	if !ok {
		invalid(c, "doc_text", MessageInvalidDocument)
		return
	}

	res, err := h.Svc.Summarize(c.Request.Context(), text)
	if err != nil {
		h.documentError(c, err)
		return
	}
	c.Set(middleware.OutcomeKey, res.Mode)
	respond.OK(c, res)
}

func (h *Handler) sample(c *gin.Context) {
	c.Set(middleware.OperationKey, "sample")
	text, err := h.Svc.Sample(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNoSample) {
			respond.NotFound(c, "no sample agreement loaded")
			return
		}
		respond.Internal(c, "failed to load sample agreement")
		return
	}
	respond.OK(c, gin.H{"sample_rental_agreement": text})
}

func (h *Handler) documentError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidDocument) {
		invalid(c, "doc_text", MessageInvalidDocument)
		return
	}
	respond.Internal(c, "failed to analyze document")
}

func invalid(c *gin.Context, field, message string) {
	c.Set(middleware.OutcomeKey, "rejected")
	respond.Validation(c, message, []map[string]string{
		{"field": field, "issue": "invalid"},
	})
}

// inputField reads a text field from a JSON object body or from form values.
// ok is false when a JSON body carries a non-string value for the field or is
// not a JSON object.
func inputField(c *gin.Context, name string) (string, bool) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
			return "", false
		}
		raw, present := body[name]
		if !present || string(raw) == "null" {
			return "", true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return c.PostForm(name), true
}
