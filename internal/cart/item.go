package cart

import (
	"github.com/shopspring/decimal"

	"github.com/digiberkat/storefront-go/pkg/storefront"
)

// Variant is one selectable sub-option of a cart line item.
type Variant struct {
	ID   int
	Name string
}

// LineItem is the server-confirmed view of one cart row. Quantity always
// holds the last value the server acknowledged; optimistic display values
// live in the engine's per-item overlay, never here.
type LineItem struct {
	ID         int
	ProductID  int
	VariantID  *int
	Name       string
	Stock      int
	Quantity   int
	UnitPrice  decimal.Decimal
	Discounted *decimal.Decimal
	Variants   []Variant
	Thumbnails []string
}

// EffectiveUnitPrice is the discounted unit price when one applies, else the
// list price.
func (li LineItem) EffectiveUnitPrice() decimal.Decimal {
	if li.Discounted != nil && li.Discounted.LessThan(li.UnitPrice) {
		return *li.Discounted
	}
	return li.UnitPrice
}

// HasVariants reports whether the product offers selectable variants.
func (li LineItem) HasVariants() bool {
	return len(li.Variants) > 0
}

func lineItemFromWire(wire storefront.CartItem) LineItem {
	li := LineItem{
		ID:         wire.ID,
		ProductID:  wire.ProductID,
		Name:       wire.Name,
		Stock:      wire.Stock,
		Quantity:   wire.Quantity,
		UnitPrice:  wire.Price,
		Thumbnails: wire.Thumbnails,
	}
	if wire.ProductVariantID != nil {
		id := *wire.ProductVariantID
		li.VariantID = &id
	}
	if wire.PricePerItem != nil {
		price := *wire.PricePerItem
		li.Discounted = &price
	}
	for _, variant := range wire.Variants {
		li.Variants = append(li.Variants, Variant{ID: variant.ID, Name: variant.Name})
	}
	return li
}
