package storefront

import "github.com/shopspring/decimal"

// CartItemVariant is one selectable variant of a product already in the cart.
type CartItemVariant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CartItem is a single cart line as served by GET cart-items/my. Stock and
// prices always describe the currently selected variant (or the base product
// when the item has none).
type CartItem struct {
	ID               int               `json:"id"`
	CartID           int               `json:"cart_id"`
	ProductID        int               `json:"product_id"`
	ProductVariantID *int              `json:"product_variant_id"`
	Name             string            `json:"name"`
	Stock            int               `json:"stock"`
	Thumbnails       []string          `json:"thumbnails"`
	Variants         []CartItemVariant `json:"variants"`
	Quantity         int               `json:"quantity"`
	Price            decimal.Decimal   `json:"price"`
	PricePerItem     *decimal.Decimal  `json:"price_per_item"`
	TotalPrice       decimal.Decimal   `json:"total_price"`
}

// EffectiveUnitPrice is the discounted price when present, else the list price.
func (c CartItem) EffectiveUnitPrice() decimal.Decimal {
	if c.PricePerItem != nil && c.PricePerItem.LessThan(c.Price) {
		return *c.PricePerItem
	}
	return c.Price
}

type CartResponse struct {
	Data           []CartItem      `json:"data"`
	Message        string          `json:"message"`
	TotalCartPrice decimal.Decimal `json:"total_cart_price"`
}

// Ack is the plain acknowledgement most mutations return.
type Ack struct {
	Message string `json:"message"`
}

// VariantAck acknowledges a variant change. MergedToItemID is set when the
// server folded the line into an existing line item carrying the new variant;
// the original line must then be treated as removed.
type VariantAck struct {
	Message        string `json:"message"`
	MergedToItemID *int   `json:"merged_to_item_id"`
	QuantityNow    *int   `json:"quantity_now"`
}

type OrderAck struct {
	OrderID   int    `json:"order_id"`
	ExpiredAt string `json:"expired_at"`
	Message   string `json:"message"`
}

type Order struct {
	ID         int             `json:"id"`
	UserID     int             `json:"user_id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

type OrderItem struct {
	OrderItemID     int             `json:"order_item_id"`
	ProductID       int             `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Thumbnail       string          `json:"thumbnail"`
	Variant         *string         `json:"variant"`
}

type OrderWithSampleItem struct {
	Order      Order     `json:"order"`
	SampleItem OrderItem `json:"sample_item"`
}

type OrdersResponse struct {
	Data    []OrderWithSampleItem `json:"data"`
	Message string                `json:"message"`
}

type OrderDetailItem struct {
	ID               int              `json:"id"`
	OrderID          int              `json:"order_id"`
	ProductID        int              `json:"product_id"`
	ProductVariantID *int             `json:"product_variant_id"`
	Name             string           `json:"name"`
	Thumbnails       []string         `json:"thumbnails"`
	Quantity         int              `json:"quantity"`
	Price            decimal.Decimal  `json:"price"`
	PriceAtPurchase  decimal.Decimal  `json:"price_at_purchase"`
	TotalPrice       decimal.Decimal  `json:"total_price"`
	Variants         []ProductVariant `json:"variants,omitempty"`
}

type OrderDetailResponse struct {
	Data            []OrderDetailItem `json:"data"`
	Message         string            `json:"message"`
	Status          string            `json:"status"`
	CreatedAt       string            `json:"created_at"`
	TotalOrderPrice decimal.Decimal   `json:"total_order_price"`
}

type ProductVariant struct {
	ID            int              `json:"id"`
	ProductID     int              `json:"product_id"`
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	IsDiscounted  bool             `json:"is_discounted"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Stock         *int             `json:"stock"`
	Image         string           `json:"image,omitempty"`
}

type Product struct {
	ID              int              `json:"id"`
	CategoryID      int              `json:"category_id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	IsVarians       bool             `json:"is_varians"`
	IsDiscounted    bool             `json:"is_discounted"`
	DiscountPrice   *decimal.Decimal `json:"discount_price"`
	Price           *decimal.Decimal `json:"price"`
	Stock           *int             `json:"stock"`
	Images          []string         `json:"images"`
	Thumbnails      []string         `json:"thumbnails"`
	Variants        []ProductVariant `json:"variants,omitempty"`
	MinVariantPrice *decimal.Decimal `json:"min_variant_price,omitempty"`
	IsAvailable     *bool            `json:"is_available,omitempty"`
}

// RecommendedProduct is a catalog product annotated by the recommendation
// service; the ranking itself is opaque to this client.
type RecommendedProduct struct {
	Product
	SimilarityScore float64 `json:"similarity_score"`
}

// AddItemParams is the payload for POST cart-items.
type AddItemParams struct {
	ProductID        int  `json:"product_id" validate:"required,gt=0"`
	Quantity         int  `json:"quantity" validate:"required,gt=0"`
	ProductVariantID *int `json:"product_variant_id,omitempty" validate:"omitempty,gt=0"`
}

// RecommendParams is the payload for POST recommend.
type RecommendParams struct {
	UserQuery string    `json:"userQuery" validate:"required"`
	Products  []Product `json:"products" validate:"required,min=1"`
}
