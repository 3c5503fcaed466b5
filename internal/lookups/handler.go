package lookups

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/shared/server/respond"
)

// Handler exposes lookup statistics.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches lookup routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/lookups", h.listLookups)
}

func (h *Handler) listLookups(c *gin.Context) {
	outcome := strings.ToLower(strings.TrimSpace(c.Query("outcome")))
	limit := DefaultLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respond.Validation(c, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	items, err := h.Svc.Top(c.Request.Context(), outcome, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidOutcome):
			respond.Validation(c, "outcome must be exact, partial or none", []map[string]string{
				{"field": "outcome", "issue": "invalid"},
			})
		default:
			respond.Internal(c, "failed to list lookups")
		}
		return
	}

	respond.OK(c, gin.H{"items": items, "outcome": outcome, "limit": limit})
}
