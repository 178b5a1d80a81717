package storefront

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
)

const (
	fallbackFetchCart   = "Gagal mengambil data keranjang"
	fallbackAddItem     = "Gagal menambahkan item ke keranjang"
	fallbackSetQuantity = "Gagal mengupdate quantity"
	fallbackSetVariant  = "Gagal mengganti varian item keranjang"
	fallbackRemoveItem  = "Gagal menghapus item dari keranjang"
)

// FetchCart loads the authenticated user's cart snapshot.
func (c *Client) FetchCart(ctx context.Context) (*CartResponse, error) {
	var out CartResponse
	if err := c.do(ctx, call{
		op:       "fetch_cart",
		method:   http.MethodGet,
		path:     "cart-items/my",
		out:      &out,
		fallback: fallbackFetchCart,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddItem adds a product (optionally a specific variant) to the cart.
func (c *Client) AddItem(ctx context.Context, params AddItemParams) (*Ack, error) {
	if err := c.validateParams("add_item", params, fallbackAddItem); err != nil {
		return nil, err
	}
	var out Ack
	if err := c.do(ctx, call{
		op:       "add_item",
		method:   http.MethodPost,
		path:     "cart-items",
		body:     params,
		out:      &out,
		fallback: fallbackAddItem,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetQuantity commits a new quantity for a cart line item. The server is the
// final authority on stock range; rejections map to INVALID_QUANTITY.
func (c *Client) SetQuantity(ctx context.Context, itemID, quantity int) (*Ack, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, fallbackSetQuantity)
	}
	var out Ack
	if err := c.do(ctx, call{
		op:     "set_quantity",
		method: http.MethodPatch,
		path:   fmt.Sprintf("cart-items/%d", itemID),
		body: map[string]int{
			"quantity": quantity,
		},
		out:          &out,
		fallback:     fallbackSetQuantity,
		badRequestAs: pkgerrors.CodeInvalidQuantity,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetVariant switches the selected variant of a cart line item. When the new
// variant already exists as its own line the server merges them and reports
// the surviving id in MergedToItemID.
func (c *Client) SetVariant(ctx context.Context, itemID, variantID int) (*VariantAck, error) {
	var out VariantAck
	if err := c.do(ctx, call{
		op:     "set_variant",
		method: http.MethodPatch,
		path:   fmt.Sprintf("cart-items/%d/variant", itemID),
		body: map[string]int{
			"variant_id": variantID,
		},
		out:      &out,
		fallback: fallbackSetVariant,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveItem deletes a cart line item.
func (c *Client) RemoveItem(ctx context.Context, itemID int) (*Ack, error) {
	var out Ack
	if err := c.do(ctx, call{
		op:       "remove_item",
		method:   http.MethodDelete,
		path:     fmt.Sprintf("cart-items/%d", itemID),
		out:      &out,
		fallback: fallbackRemoveItem,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
