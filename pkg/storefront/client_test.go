package storefront

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/digiberkat/storefront-go/pkg/auth"
	"github.com/digiberkat/storefront-go/pkg/config"
	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
	"github.com/digiberkat/storefront-go/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(context.Background(), config.APIConfig{
		BaseURL:        server.URL + "/api/v1/",
		RequestTimeout: 5 * time.Second,
	}, auth.NewStaticTokenProvider("test-token"), logg)
	require.NoError(t, err)
	return client, server
}

func TestFetchCartDecodesPayload(t *testing.T) {
	var gotAuth, gotRequestID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/cart-items/my", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [{
				"id": 11, "cart_id": 3, "product_id": 7, "product_variant_id": 2,
				"name": "Kabel HDMI", "stock": 5,
				"variants": [{"id": 2, "name": "2 meter"}, {"id": 4, "name": "5 meter"}],
				"quantity": 3, "price": 50000, "price_per_item": 45000, "total_price": 135000
			}],
			"message": "ok",
			"total_cart_price": 135000
		}`))
	}))

	resp, err := client.FetchCart(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer test-token", gotAuth)
	require.NotEmpty(t, gotRequestID)
	require.Len(t, resp.Data, 1)

	item := resp.Data[0]
	require.Equal(t, 11, item.ID)
	require.NotNil(t, item.ProductVariantID)
	require.Equal(t, 2, *item.ProductVariantID)
	require.Equal(t, 5, item.Stock)
	require.True(t, item.EffectiveUnitPrice().Equal(decimal.NewFromInt(45000)))
	require.True(t, resp.TotalCartPrice.Equal(decimal.NewFromInt(135000)))
}

func TestEffectiveUnitPriceIgnoresNonDiscount(t *testing.T) {
	price := decimal.NewFromInt(50000)
	same := decimal.NewFromInt(50000)
	item := CartItem{Price: price, PricePerItem: &same}
	require.True(t, item.EffectiveUnitPrice().Equal(price))
}

func TestSetQuantityCarriesServerMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/v1/cart-items/11", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "stok tidak cukup"}`))
	}))

	_, err := client.SetQuantity(context.Background(), 11, 9)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInvalidQuantity, typed.Code())
	require.Equal(t, "stok tidak cukup", pkgerrors.UserMessage(err, "fallback"))
}

func TestSetQuantityFallbackWhenBodyHasNoMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.SetQuantity(context.Background(), 11, 2)
	require.Error(t, err)
	require.Equal(t, fallbackSetQuantity, pkgerrors.UserMessage(err, "other"))
}

func TestSetQuantityRejectsZeroLocally(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.SetQuantity(context.Background(), 11, 0)
	require.Error(t, err)
	require.False(t, called, "zero quantity must not reach the server")

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInvalidQuantity, typed.Code())
}

func TestSetVariantReportsMerge(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/cart-items/11/variant", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "digabung", "merged_to_item_id": 77, "quantity_now": 5}`))
	}))

	ack, err := client.SetVariant(context.Background(), 11, 4)
	require.NoError(t, err)
	require.NotNil(t, ack.MergedToItemID)
	require.Equal(t, 77, *ack.MergedToItemID)
	require.NotNil(t, ack.QuantityNow)
	require.Equal(t, 5, *ack.QuantityNow)
}

func TestCreateOrderMapsEmptyCartRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "keranjang kosong"}`))
	}))

	_, err := client.CreateOrder(context.Background())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeEmptyCart, typed.Code())
}

func TestUnauthorizedMapped(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.FetchCart(context.Background())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestTransportFailureMapsToNetwork(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := client.FetchCart(context.Background())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNetwork, pkgerrors.As(err).Code())
}

func TestAddItemValidatesBeforeNetwork(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.AddItem(context.Background(), AddItemParams{ProductID: 0, Quantity: 1})
	require.Error(t, err)
	require.False(t, called, "invalid payload must not reach the server")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRecommendValidatesQuery(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.Recommend(context.Background(), RecommendParams{UserQuery: "", Products: []Product{{ID: 1}}})
	require.Error(t, err)
	require.False(t, called)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestMyOrdersDecodesHistory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/orders/my", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [{
				"order": {"id": 9, "user_id": 1, "status": "pending", "total_price": 135000,
					"created_at": "2025-06-01T10:00:00Z", "updated_at": "2025-06-01T10:00:00Z"},
				"sample_item": {"order_item_id": 21, "product_id": 7, "product_name": "Kabel HDMI",
					"quantity": 3, "price_at_purchase": 45000, "thumbnail": "", "variant": "2 meter"}
			}],
			"message": "ok"
		}`))
	}))

	resp, err := client.MyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	require.Equal(t, 9, resp.Data[0].Order.ID)
	require.Equal(t, "pending", resp.Data[0].Order.Status)
	require.NotNil(t, resp.Data[0].SampleItem.Variant)
	require.Equal(t, "2 meter", *resp.Data[0].SampleItem.Variant)
}
