package cart

import "github.com/shopspring/decimal"

// ItemView is one line item as the UI should display it: the server-confirmed
// row with the optimistic quantity substituted in.
type ItemView struct {
	LineItem
	// DisplayQuantity is the optimistic quantity, which may run ahead of the
	// server-confirmed LineItem.Quantity while a debounce or sync is pending.
	DisplayQuantity int
	// Syncing is true while a mutation for this item is in flight; UIs
	// typically disable the variant selector and show a spinner.
	Syncing bool
	// PendingSync is true while an edit awaits its debounce window.
	PendingSync bool
	// RemovalRequested is true while the removal confirmation is unanswered.
	RemovalRequested bool
}

// Snapshot is the reconciled cart view handed to UIs and to the order flow.
type Snapshot struct {
	Items []ItemView
	// ServerTotal is the total_cart_price from the last fetch and stays
	// authoritative for checkout.
	ServerTotal decimal.Decimal
	// LocalTotal is recomputed from effective unit prices and optimistic
	// quantities; it is display feedback only.
	LocalTotal decimal.Decimal
	// Settled is true when no item has an unsynced edit; display code shows
	// ServerTotal when settled and LocalTotal otherwise.
	Settled bool
}

// Empty reports whether the cart has no line items.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// DisplayTotal picks the total to render: the authoritative server total once
// everything is settled, the optimistic recompute while edits are in flight.
func (s Snapshot) DisplayTotal() decimal.Decimal {
	if s.Settled {
		return s.ServerTotal
	}
	return s.LocalTotal
}
