package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

type productHandlers struct {
	svc    productService
	logger *logger.Logger
}

func (h *productHandlers) list(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("fetch products", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	respondData(c, http.StatusOK, views)
}

func (h *productHandlers) get(c *gin.Context) {
	id := c.Param("id")
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("fetch product", "id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	respondData(c, http.StatusOK, toProductView(*p))
}
