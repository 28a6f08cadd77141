package controllers

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/catalog"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type productResponse struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              string   `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	DiscountedPrice    string   `json:"discountedPrice"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	InStock            bool     `json:"inStock"`
	Brand              string   `json:"brand,omitempty"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images,omitempty"`
}

func newProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Price:              money(p.Price),
		DiscountPercentage: p.DiscountPercentage,
		DiscountedPrice:    money(p.DiscountedPrice()),
		Rating:             p.Rating,
		Stock:              p.Stock,
		InStock:            p.InStock(),
		Brand:              p.Brand,
		Category:           p.Category,
		Thumbnail:          p.Thumbnail,
		Images:             p.Images,
	}
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	Categories []string          `json:"categories"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
}

type cartLineResponse struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Thumbnail string `json:"thumbnail"`
	Stock     int    `json:"stock"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type cartResponse struct {
	Items         []cartLineResponse `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalAmount   string             `json:"totalAmount"`
}

func newCartLines(lines []cart.Line) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineResponse{
			ID:        l.ID,
			Title:     l.Title,
			Price:     money(l.Price),
			Thumbnail: l.Thumbnail,
			Stock:     l.Stock,
			Quantity:  l.Quantity,
			Subtotal:  money(l.Subtotal()),
		})
	}
	return out
}

func newCartResponse(state cart.State) cartResponse {
	return cartResponse{
		Items:         newCartLines(state.Lines),
		TotalQuantity: state.TotalQuantity,
		TotalAmount:   money(state.TotalAmount),
	}
}

type cartCommandResponse struct {
	Cart    cartResponse `json:"cart"`
	Outcome string       `json:"outcome"`
}
