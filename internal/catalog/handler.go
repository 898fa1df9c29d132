package catalog

import (
	"github.com/gin-gonic/gin"

	"calorievision-backend/internal/shared/server/respond"
)

// Handler serves the read-only catalog.
type Handler struct {
	Catalog *Catalog
}

// NewHandler constructs a Handler.
func NewHandler(c *Catalog) *Handler {
	return &Handler{Catalog: c}
}

// RegisterRoutes attaches catalog routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog", h.list)
}

func (h *Handler) list(c *gin.Context) {
	respond.OK(c, gin.H{
		"source": h.Catalog.Source(),
		"items":  h.Catalog.All(),
	})
}
