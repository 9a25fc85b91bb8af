package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/velora-shop/storefront-go/internal/core/domain"
)

// ListProducts returns one page of the catalog.
func (c *Client) ListProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}

	path := "/api/products"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page domain.ProductPage
	if err := c.do(ctx, "catalog.list", http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct returns a single product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, "catalog.get", http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
