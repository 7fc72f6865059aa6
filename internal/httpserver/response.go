package httpserver

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

// envelope is the body shape of every /api response except health.
type envelope struct {
	Data  interface{} `json:"data"`
	Error *string     `json:"error"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Data: data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Error: &msg})
}

type productView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Price       json.Number `json:"price"`
	ImageURL    *string     `json:"image_url"`
	CreatedAt   time.Time   `json:"created_at"`
}

// toProductView renders price as a JSON number carrying the exact decimal digits.
func toProductView(p domain.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}
