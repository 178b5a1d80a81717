package storefront

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
)

const (
	fallbackCreateOrder = "Gagal membuat order"
	fallbackMyOrders    = "Gagal mengambil data order"
	fallbackOrderDetail = "Gagal mengambil detail order"
	fallbackCancelOrder = "Gagal membatalkan order"
)

// CreateOrder turns the server-side cart into an order. The server rejects an
// empty cart; callers are expected to pre-check and avoid the round trip.
func (c *Client) CreateOrder(ctx context.Context) (*OrderAck, error) {
	var out OrderAck
	if err := c.do(ctx, call{
		op:           "create_order",
		method:       http.MethodPost,
		path:         "orders",
		out:          &out,
		fallback:     fallbackCreateOrder,
		badRequestAs: pkgerrors.CodeEmptyCart,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrders lists the authenticated user's order history.
func (c *Client) MyOrders(ctx context.Context) (*OrdersResponse, error) {
	var out OrdersResponse
	if err := c.do(ctx, call{
		op:       "my_orders",
		method:   http.MethodGet,
		path:     "orders/my",
		out:      &out,
		fallback: fallbackMyOrders,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderDetail loads the line items of one order.
func (c *Client) OrderDetail(ctx context.Context, orderID int) (*OrderDetailResponse, error) {
	var out OrderDetailResponse
	if err := c.do(ctx, call{
		op:       "order_detail",
		method:   http.MethodGet,
		path:     fmt.Sprintf("orders/%d", orderID),
		out:      &out,
		fallback: fallbackOrderDetail,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, orderID int) (*Ack, error) {
	var out Ack
	if err := c.do(ctx, call{
		op:       "cancel_order",
		method:   http.MethodPut,
		path:     fmt.Sprintf("orders/%d/cancel", orderID),
		out:      &out,
		fallback: fallbackCancelOrder,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
