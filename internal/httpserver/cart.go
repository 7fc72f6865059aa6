package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/logger"
	cartsvc "storefront/internal/service/cart"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 15 * time.Second
)

type cartHandlers struct {
	cart     *cartsvc.Manager
	products productService
	logger   *logger.Logger
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

func (h *cartHandlers) get(c *gin.Context) {
	respondData(c, http.StatusOK, toCartView(h.cart.Snapshot()))
}

func (h *cartHandlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		respondError(c, http.StatusBadRequest, "productId required")
		return
	}

	ctx := c.Request.Context()
	p, err := h.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("fetch product for cart", "product_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	h.cart.AddToCart(ctx, *p)
	respondData(c, http.StatusOK, toCartView(h.cart.Snapshot()))
}

func (h *cartHandlers) removeItem(c *gin.Context) {
	h.cart.RemoveFromCart(c.Request.Context(), c.Param("productId"))
	respondData(c, http.StatusOK, toCartView(h.cart.Snapshot()))
}

func (h *cartHandlers) clear(c *gin.Context) {
	h.cart.ClearCart(c.Request.Context())
	respondData(c, http.StatusOK, toCartView(h.cart.Snapshot()))
}

func (h *cartHandlers) dismissNotification(c *gin.Context) {
	h.cart.DismissNotification()
	respondData(c, http.StatusOK, toCartView(h.cart.Snapshot()))
}

// events streams a "cart" event with the full cart after every change, starting with the
// current state. Slow clients miss intermediate versions rather than stall the cart.
func (h *cartHandlers) events(c *gin.Context) {
	updates := make(chan cartsvc.Snapshot, eventBuffer)
	unsubscribe := h.cart.Subscribe(func(s cartsvc.Snapshot) {
		select {
		case updates <- s:
		default:
			h.logger.Warn("dropping cart event, client too slow", "version", s.Version)
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	initial := h.cart.Snapshot()
	last := initial.Version
	c.SSEvent("cart", toCartView(initial))
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case s := <-updates:
			if s.Version <= last {
				return true
			}
			last = s.Version
			c.SSEvent("cart", toCartView(s))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"version": last})
			return true
		}
	})
}
