package admin

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/shared/server/middleware"
	"legallens-backend/internal/shared/server/respond"
)

const maxDocumentSize = 8 << 20

// Handler exposes knowledge maintenance routes behind the admin token.
type Handler struct {
	Svc   *Service
	Token string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, token string) *Handler {
	return &Handler{Svc: svc, Token: token}
}

// RegisterRoutes attaches admin routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/admin", middleware.AdminToken(h.Token))
	g.POST("/knowledge/reload", h.reload)
	g.PUT("/knowledge", h.publish)
	g.GET("/knowledge", h.export)
}

func (h *Handler) reload(c *gin.Context) {
	c.Set(middleware.OperationKey, "admin.reload")
	status, err := h.Svc.Reload(c.Request.Context(), middleware.RequestIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "reload_failed", "knowledge reload failed; previous knowledge base kept", nil)
		return
	}
	respond.OK(c, status)
}

func (h *Handler) publish(c *gin.Context) {
	c.Set(middleware.OperationKey, "admin.publish")
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentSize+1))
	if err != nil {
		respond.Validation(c, "unable to read body", nil)
		return
	}
	if len(body) > maxDocumentSize {
		respond.Error(c, http.StatusRequestEntityTooLarge, "document_too_large", "knowledge document exceeds 8MB", nil)
		return
	}

	status, err := h.Svc.Publish(c.Request.Context(), body, middleware.RequestIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDocument):
			respond.Validation(c, err.Error(), nil)
		case errors.Is(err, ErrStoreNotConfigured):
			respond.Error(c, http.StatusConflict, "not_configured", "KNOWLEDGE_PATH must name an object key to publish", nil)
		default:
			respond.Internal(c, "failed to publish knowledge document")
		}
		return
	}
	respond.OK(c, status)
}

func (h *Handler) export(c *gin.Context) {
	c.Set(middleware.OperationKey, "admin.export")
	data, err := h.Svc.Export()
	if err != nil {
		respond.Internal(c, "failed to encode knowledge base")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
