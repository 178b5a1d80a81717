package storefront

import (
	"context"
	"fmt"
	"net/http"
)

const (
	fallbackProducts  = "Gagal mengambil data produk"
	fallbackRecommend = "Gagal mengambil rekomendasi produk"
)

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out struct {
		Data    []Product `json:"data"`
		Message string    `json:"message"`
	}
	if err := c.do(ctx, call{
		op:       "products",
		method:   http.MethodGet,
		path:     "products",
		out:      &out,
		fallback: fallbackProducts,
	}); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ProductByID loads one product with its variants.
func (c *Client) ProductByID(ctx context.Context, productID int) (*Product, error) {
	var out struct {
		Data    Product `json:"data"`
		Message string  `json:"message"`
	}
	if err := c.do(ctx, call{
		op:       "product_by_id",
		method:   http.MethodGet,
		path:     fmt.Sprintf("products/id/%d", productID),
		out:      &out,
		fallback: fallbackProducts,
	}); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Recommend asks the recommendation service to rank the given products
// against a free-text query. The ranking algorithm is opaque to the client.
func (c *Client) Recommend(ctx context.Context, params RecommendParams) ([]RecommendedProduct, error) {
	if err := c.validateParams("recommend", params, fallbackRecommend); err != nil {
		return nil, err
	}
	var out struct {
		Data    []RecommendedProduct `json:"data"`
		Message string               `json:"message"`
	}
	if err := c.do(ctx, call{
		op:       "recommend",
		method:   http.MethodPost,
		path:     "recommend",
		body:     params,
		out:      &out,
		fallback: fallbackRecommend,
	}); err != nil {
		return nil, err
	}
	return out.Data, nil
}
