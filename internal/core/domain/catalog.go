package domain

import "time"

// Product is a catalog entry as the storefront lists it.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SalePrice   float64   `json:"sale_price,omitempty"`
	OnSale      bool      `json:"on_sale"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// EffectivePrice returns the price a buyer actually pays.
func (p Product) EffectivePrice() float64 {
	if p.OnSale && p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// ProductQuery selects and pages catalog listings. Zero values mean
// "no filter" / server defaults.
type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}
