package orders

import (
	"context"
	"fmt"

	"github.com/digiberkat/storefront-go/internal/cart"
	"github.com/digiberkat/storefront-go/internal/notify"
	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
	"github.com/digiberkat/storefront-go/pkg/logger"
	"github.com/digiberkat/storefront-go/pkg/storefront"
)

const (
	msgEmptyCart         = "Keranjang Anda kosong. Tambahkan produk sebelum memesan."
	msgCreateOrderFailed = "Gagal membuat order. Silakan coba lagi."
	msgOrderCreatedFmt   = "Order berhasil dibuat! Selesaikan pembayaran sebelum %s."
	msgOrderCancelled    = "Order berhasil dibatalkan."
)

// Gateway is the slice of the remote API the order flow drives.
type Gateway interface {
	CreateOrder(ctx context.Context) (*storefront.OrderAck, error)
	MyOrders(ctx context.Context) (*storefront.OrdersResponse, error)
	OrderDetail(ctx context.Context, orderID int) (*storefront.OrderDetailResponse, error)
	CancelOrder(ctx context.Context, orderID int) (*storefront.Ack, error)
}

// CartReader is what the flow needs from the cart engine: the current
// snapshot for the empty-cart pre-check, and a refresh after checkout clears
// the server-side cart.
type CartReader interface {
	Snapshot() cart.Snapshot
	Refresh(ctx context.Context) error
}

// Navigator receives the post-checkout redirect. UIs route to the order
// history screen; headless callers can use NavigatorFunc with a no-op.
type Navigator interface {
	ShowOrderHistory(ctx context.Context, orderID int)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, orderID int)

func (f NavigatorFunc) ShowOrderHistory(ctx context.Context, orderID int) {
	f(ctx, orderID)
}

// Options configures an order flow.
type Options struct {
	Gateway   Gateway
	Cart      CartReader
	Sink      notify.Sink
	Navigator Navigator
	Logger    *logger.Logger
}

// Flow turns the synchronized cart into orders and exposes order history.
type Flow struct {
	gw   Gateway
	cart CartReader
	sink notify.Sink
	nav  Navigator
	logg *logger.Logger
}

// NewFlow wires the flow's collaborators. Navigator is optional.
func NewFlow(opts Options) (*Flow, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("orders gateway required")
	}
	if opts.Cart == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	nav := opts.Navigator
	if nav == nil {
		nav = NavigatorFunc(func(context.Context, int) {})
	}
	return &Flow{
		gw:   opts.Gateway,
		cart: opts.Cart,
		sink: opts.Sink,
		nav:  nav,
		logg: opts.Logger,
	}, nil
}

// Submit places an order from the server-side cart. An empty local snapshot
// short-circuits without a round trip; on success the user is notified,
// routed to order history and the (now empty) cart is refreshed.
func (f *Flow) Submit(ctx context.Context) (*storefront.OrderAck, error) {
	if f.cart.Snapshot().Empty() {
		f.sink.Notify(ctx, notify.SeverityError, msgEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, msgEmptyCart)
	}

	ack, err := f.gw.CreateOrder(ctx)
	if err != nil {
		f.sink.Notify(ctx, notify.SeverityError, pkgerrors.UserMessage(err, msgCreateOrderFailed))
		return nil, err
	}

	message := ack.Message
	if message == "" {
		message = fmt.Sprintf(msgOrderCreatedFmt, ack.ExpiredAt)
	}
	f.sink.Notify(ctx, notify.SeveritySuccess, message)
	f.nav.ShowOrderHistory(ctx, ack.OrderID)

	if err := f.cart.Refresh(ctx); err != nil {
		f.logg.Error(f.logg.WithOperation(ctx, "create_order"), "cart refresh after checkout failed", err)
	}
	return ack, nil
}

// History lists the authenticated user's orders, newest first as the server
// returns them.
func (f *Flow) History(ctx context.Context) ([]storefront.OrderWithSampleItem, error) {
	resp, err := f.gw.MyOrders(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Detail loads one order's line items and status.
func (f *Flow) Detail(ctx context.Context, orderID int) (*storefront.OrderDetailResponse, error) {
	return f.gw.OrderDetail(ctx, orderID)
}

// Cancel cancels a pending order and surfaces the server's message.
func (f *Flow) Cancel(ctx context.Context, orderID int) error {
	ack, err := f.gw.CancelOrder(ctx, orderID)
	if err != nil {
		f.sink.Notify(ctx, notify.SeverityError, pkgerrors.UserMessage(err, "Gagal membatalkan order."))
		return err
	}
	message := ack.Message
	if message == "" {
		message = msgOrderCancelled
	}
	f.sink.Notify(ctx, notify.SeveritySuccess, message)
	return nil
}
