package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/logger"
	cartsvc "storefront/internal/service/cart"
)

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Deps are the collaborators the router serves.
type Deps struct {
	ProductSvc  productService
	Cart        *cartsvc.Manager
	CORSOrigins []string
	// ReadyChecks are probed by /readyz, keyed by a name used in the failure reason.
	ReadyChecks map[string]Pinger
}

// buildRouter wires routes for the API.
func buildRouter(log *logger.Logger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil {
		return nil, errors.New("product service required")
	}
	if deps.Cart == nil {
		return nil, errors.New("cart manager required")
	}
	log = logger.OrNop(log)

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{"Content-Type"},
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyChecks))
	router.GET("/api-docs.json", openAPIHandler)
	router.GET("/api-docs", swaggerUIHandler)

	api := router.Group("/api")
	api.GET("/health", healthHandler)

	products := &productHandlers{svc: deps.ProductSvc, logger: log.With("component", "products_api")}
	api.GET("/products", products.list)
	api.GET("/products/:id", products.get)

	carts := &cartHandlers{cart: deps.Cart, products: deps.ProductSvc, logger: log.With("component", "cart_api")}
	api.GET("/cart", carts.get)
	api.POST("/cart/items", carts.addItem)
	api.DELETE("/cart/items/:productId", carts.removeItem)
	api.DELETE("/cart", carts.clear)
	api.POST("/cart/notification/dismiss", carts.dismissNotification)
	api.GET("/cart/events", carts.events)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router, nil
}
