package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/digiberkat/storefront-go/internal/notify"
	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
	"github.com/digiberkat/storefront-go/pkg/logger"
	"github.com/digiberkat/storefront-go/pkg/metrics"
	"github.com/digiberkat/storefront-go/pkg/storefront"
)

const (
	defaultDebounceWindow = 700 * time.Millisecond
	defaultEventBuffer    = 16
)

// Gateway is the slice of the remote API the engine drives. The storefront
// client satisfies it directly.
type Gateway interface {
	FetchCart(ctx context.Context) (*storefront.CartResponse, error)
	AddItem(ctx context.Context, params storefront.AddItemParams) (*storefront.Ack, error)
	SetQuantity(ctx context.Context, itemID, quantity int) (*storefront.Ack, error)
	SetVariant(ctx context.Context, itemID, variantID int) (*storefront.VariantAck, error)
	RemoveItem(ctx context.Context, itemID int) (*storefront.Ack, error)
}

// phase tracks where a line item sits in its edit lifecycle. The rolled-back
// state of the lifecycle is transient: a failed sync lands straight back in
// phaseIdle after restoring the confirmed quantity.
type phase int

const (
	phaseIdle phase = iota
	phaseDebouncing
	phaseSyncing
)

type itemState struct {
	item    LineItem
	pending int
	phase   phase
	timer   *time.Timer
	// deferred records a debounce window that expired while a sync for the
	// same item was in flight; the dispatch happens when that sync resolves,
	// keeping at most one request per item on the wire.
	deferred       bool
	variantSyncing bool
	removalPrompt  bool
}

func (st *itemState) stopTimer() {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
}

func (st *itemState) settled() bool {
	return st.phase == phaseIdle && st.timer == nil && !st.deferred &&
		!st.variantSyncing && !st.removalPrompt
}

// Options configures a cart engine.
type Options struct {
	Gateway        Gateway
	Sink           notify.Sink
	Logger         *logger.Logger
	Metrics        *metrics.CartSyncMetrics
	DebounceWindow time.Duration
	EventBuffer    int
}

// Engine owns the local-optimistic view of the cart. User edits apply
// immediately to the displayed quantities, get coalesced per item through a
// single-slot debounce window, and are rolled back to the last
// server-confirmed values when a mutation fails.
type Engine struct {
	mu sync.Mutex
	wg sync.WaitGroup

	gw      Gateway
	sink    notify.Sink
	logg    *logger.Logger
	metrics *metrics.CartSyncMetrics
	window  time.Duration
	bufSize int

	items       map[int]*itemState
	order       []int
	serverTotal decimal.Decimal

	subs    map[int]chan Event
	nextSub int
	closed  bool
}

// NewEngine wires the engine's collaborators.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	window := opts.DebounceWindow
	if window <= 0 {
		window = defaultDebounceWindow
	}
	bufSize := opts.EventBuffer
	if bufSize <= 0 {
		bufSize = defaultEventBuffer
	}
	return &Engine{
		gw:      opts.Gateway,
		sink:    opts.Sink,
		logg:    opts.Logger,
		metrics: opts.Metrics,
		window:  window,
		bufSize: bufSize,
		items:   map[int]*itemState{},
		subs:    map[int]chan Event{},
	}, nil
}

// Subscribe registers for change events. The returned cancel func must be
// called when the subscriber goes away. Events are best-effort: a slow
// subscriber misses intermediate events and should re-read Snapshot.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan Event, e.bufSize)
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if existing, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Snapshot returns the reconciled cart view: server-confirmed rows with
// optimistic quantities substituted, plus both totals.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		ServerTotal: e.serverTotal,
		LocalTotal:  decimal.Zero,
		Settled:     true,
	}
	for _, id := range e.order {
		st, ok := e.items[id]
		if !ok {
			continue
		}
		if !st.settled() {
			snap.Settled = false
		}
		snap.Items = append(snap.Items, ItemView{
			LineItem:         st.item,
			DisplayQuantity:  st.pending,
			Syncing:          st.phase == phaseSyncing || st.variantSyncing,
			PendingSync:      st.timer != nil || st.deferred,
			RemovalRequested: st.removalPrompt,
		})
		line := st.item.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(st.pending)))
		snap.LocalTotal = snap.LocalTotal.Add(line)
	}
	return snap
}

// Refresh replaces the server-confirmed baseline with a fresh fetch. Items
// with an unsynced local edit keep their optimistic quantity; everything else
// snaps to the refreshed server values.
func (e *Engine) Refresh(ctx context.Context) error {
	resp, err := e.gw.FetchCart(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.serverTotal = resp.TotalCartPrice
	seen := make(map[int]bool, len(resp.Data))
	order := make([]int, 0, len(resp.Data))
	for _, wire := range resp.Data {
		li := lineItemFromWire(wire)
		seen[li.ID] = true
		order = append(order, li.ID)
		if st, ok := e.items[li.ID]; ok {
			st.item = li
			if st.settled() {
				st.pending = li.Quantity
			}
			continue
		}
		e.items[li.ID] = &itemState{item: li, pending: li.Quantity}
	}
	for id, st := range e.items {
		if !seen[id] {
			st.stopTimer()
			delete(e.items, id)
		}
	}
	e.order = order
	e.mu.Unlock()

	e.emit(Event{Kind: EventCartUpdated})
	return nil
}

// ApplyDelta applies a +1/-1 style quantity edit optimistically and (re)arms
// the item's debounce window. Driving the quantity to zero raises the removal
// prompt instead of committing a zero.
func (e *Engine) ApplyDelta(ctx context.Context, itemID, delta int) error {
	e.mu.Lock()
	st, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		e.notifyUser(ctx, notify.SeverityError, msgItemNotFound)
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}

	newQuantity := st.pending + delta
	if newQuantity < 0 {
		newQuantity = 0
	}

	if newQuantity == 0 {
		st.pending = 0
		st.removalPrompt = true
		st.stopTimer()
		if st.phase == phaseDebouncing {
			st.phase = phaseIdle
		}
		e.mu.Unlock()
		e.emit(Event{Kind: EventRemovalPrompt, ItemID: itemID})
		return nil
	}

	if newQuantity > st.item.Stock {
		st.pending = st.item.Stock
		stock := st.item.Stock
		e.mu.Unlock()
		e.notifyUser(ctx, notify.SeverityError, fmt.Sprintf(msgStockOnlyFmt, stock))
		e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
		return nil
	}

	if st.timer != nil {
		e.metrics.IncCoalesced()
	}
	st.pending = newQuantity
	st.removalPrompt = false
	e.armDebounceLocked(st, itemID)
	e.mu.Unlock()

	e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
	return nil
}

// armDebounceLocked replaces the item's pending timer. Caller holds e.mu.
func (e *Engine) armDebounceLocked(st *itemState, itemID int) {
	st.stopTimer()
	if st.phase != phaseSyncing {
		st.phase = phaseDebouncing
	}
	st.timer = time.AfterFunc(e.window, func() {
		e.debounceFired(itemID)
	})
}

func (e *Engine) debounceFired(itemID int) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	st, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		return
	}
	st.timer = nil

	if st.removalPrompt {
		e.mu.Unlock()
		return
	}
	if st.phase == phaseSyncing {
		st.deferred = true
		e.mu.Unlock()
		return
	}

	quantity := st.pending
	if quantity == st.item.Quantity {
		st.phase = phaseIdle
		e.mu.Unlock()
		return
	}
	if quantity < 1 || quantity > st.item.Stock {
		// The optimistic value no longer fits the confirmed stock (e.g. a
		// refresh shrank it); roll back rather than send a doomed mutation.
		st.pending = st.item.Quantity
		st.phase = phaseIdle
		stock := st.item.Stock
		e.mu.Unlock()
		e.metrics.IncRollback()
		e.notifyUser(context.Background(), notify.SeverityError, fmt.Sprintf(msgQuantityInvalidFmt, stock))
		e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
		return
	}

	st.phase = phaseSyncing
	e.wg.Add(1)
	go e.syncQuantity(itemID, quantity)
	e.mu.Unlock()
}

func (e *Engine) syncQuantity(itemID, quantity int) {
	defer e.wg.Done()

	ctx := context.Background()
	start := time.Now()
	_, err := e.gw.SetQuantity(ctx, itemID, quantity)
	e.metrics.ObserveDuration("set_quantity", time.Since(start))

	e.mu.Lock()
	st, ok := e.items[itemID]
	if !ok {
		// Removed while the call was in flight; nothing to reconcile.
		e.mu.Unlock()
		return
	}

	severity := notify.SeveritySuccess
	message := msgQuantityUpdated
	if err != nil {
		st.pending = st.item.Quantity
		severity = notify.SeverityError
		message = pkgerrors.UserMessage(err, msgUpdateQuantityFailed)
	} else {
		st.item.Quantity = quantity
	}

	st.phase = phaseIdle
	if st.deferred {
		st.deferred = false
		if !st.removalPrompt && st.pending != st.item.Quantity {
			e.armDebounceLocked(st, itemID)
		}
	}
	e.mu.Unlock()

	if err != nil {
		e.metrics.IncFailure("set_quantity")
		e.metrics.IncRollback()
		e.logg.Error(e.logg.WithLineItemID(ctx, itemID), "quantity sync failed", err)
	} else {
		e.metrics.IncSuccess("set_quantity")
	}
	e.notifyUser(ctx, severity, message)
	e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
}

// RequestRemoval raises the removal confirmation for an item, as the delete
// action does in the UI. The optimistic quantity is left untouched until the
// prompt is answered.
func (e *Engine) RequestRemoval(ctx context.Context, itemID int) error {
	e.mu.Lock()
	st, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		e.notifyUser(ctx, notify.SeverityError, msgItemNotFound)
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	st.removalPrompt = true
	st.stopTimer()
	if st.phase == phaseDebouncing {
		st.phase = phaseIdle
	}
	e.mu.Unlock()

	e.emit(Event{Kind: EventRemovalPrompt, ItemID: itemID})
	return nil
}

// ConfirmRemoval answers the removal prompt affirmatively and deletes the
// line item remotely. On failure the item stays with its confirmed non-zero
// quantity restored.
func (e *Engine) ConfirmRemoval(ctx context.Context, itemID int) error {
	e.mu.Lock()
	st, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		e.notifyUser(ctx, notify.SeverityError, msgItemNotFound)
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	st.stopTimer()
	st.phase = phaseSyncing
	e.mu.Unlock()

	start := time.Now()
	_, err := e.gw.RemoveItem(ctx, itemID)
	e.metrics.ObserveDuration("remove_item", time.Since(start))

	e.mu.Lock()
	st, ok = e.items[itemID]
	if err != nil {
		if ok {
			st.phase = phaseIdle
			st.removalPrompt = false
			st.pending = st.item.Quantity
			if st.pending < 1 {
				st.pending = 1
			}
		}
		e.mu.Unlock()
		e.metrics.IncFailure("remove_item")
		e.notifyUser(ctx, notify.SeverityError, pkgerrors.UserMessage(err, msgRemoveFailed))
		e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
		return err
	}
	if ok {
		delete(e.items, itemID)
		e.dropFromOrderLocked(itemID)
	}
	e.mu.Unlock()

	e.metrics.IncSuccess("remove_item")
	e.notifyUser(ctx, notify.SeveritySuccess, msgItemRemoved)
	e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
	return nil
}

// CancelRemoval answers the removal prompt negatively. The optimistic
// quantity is restored to the last confirmed value, floored at one so the
// item never sits at a displayed zero.
func (e *Engine) CancelRemoval(itemID int) error {
	e.mu.Lock()
	st, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	st.removalPrompt = false
	st.pending = st.item.Quantity
	if st.pending < 1 {
		st.pending = 1
	}
	e.mu.Unlock()

	e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
	return nil
}

// ApplyVariantChange switches the selected variant of a line item. Selecting
// the already-active variant is a no-op. When the server merges the line into
// an existing one, the stale line is dropped and the cart is refetched
// immediately so the merged target surfaces.
func (e *Engine) ApplyVariantChange(ctx context.Context, itemID, variantID int) error {
	e.mu.Lock()
	st, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		e.notifyUser(ctx, notify.SeverityError, msgItemNotFound)
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	if !st.item.HasVariants() {
		e.mu.Unlock()
		e.notifyUser(ctx, notify.SeverityError, msgVariantUnavailable)
		return pkgerrors.New(pkgerrors.CodeValidation, msgVariantUnavailable)
	}
	if st.item.VariantID != nil && *st.item.VariantID == variantID {
		e.mu.Unlock()
		return nil
	}
	if st.variantSyncing {
		e.mu.Unlock()
		return nil
	}
	st.variantSyncing = true
	e.mu.Unlock()
	e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})

	start := time.Now()
	ack, err := e.gw.SetVariant(ctx, itemID, variantID)
	e.metrics.ObserveDuration("set_variant", time.Since(start))

	e.mu.Lock()
	st, ok = e.items[itemID]
	if ok {
		st.variantSyncing = false
	}
	if err != nil {
		e.mu.Unlock()
		e.metrics.IncFailure("set_variant")
		e.notifyUser(ctx, notify.SeverityError, pkgerrors.UserMessage(err, msgVariantFailed))
		e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
		return err
	}

	if ack.MergedToItemID != nil {
		if ok {
			st.stopTimer()
			delete(e.items, itemID)
			e.dropFromOrderLocked(itemID)
		}
	} else if ok {
		selected := variantID
		st.item.VariantID = &selected
		if ack.QuantityNow != nil {
			st.item.Quantity = *ack.QuantityNow
			st.pending = *ack.QuantityNow
		}
	}
	e.mu.Unlock()

	e.metrics.IncSuccess("set_variant")
	message := ack.Message
	if message == "" {
		message = msgVariantUpdated
	}
	e.notifyUser(ctx, notify.SeveritySuccess, message)

	// Variant stock and pricing are only known server-side; refetch so the
	// snapshot (and any merge target) reflects them.
	if err := e.Refresh(ctx); err != nil {
		e.logg.Error(e.logg.WithLineItemID(ctx, itemID), "refresh after variant change failed", err)
	}
	e.emit(Event{Kind: EventCartUpdated, ItemID: itemID})
	return nil
}

// AddItem adds a product to the remote cart and refreshes the baseline.
func (e *Engine) AddItem(ctx context.Context, params storefront.AddItemParams) error {
	ack, err := e.gw.AddItem(ctx, params)
	if err != nil {
		e.notifyUser(ctx, notify.SeverityError, pkgerrors.UserMessage(err, msgAddItemFailed))
		return err
	}

	message := ack.Message
	if message == "" {
		message = msgItemAdded
	}
	e.notifyUser(ctx, notify.SeveritySuccess, message)

	if err := e.Refresh(ctx); err != nil {
		e.logg.Error(ctx, "refresh after add failed", err)
	}
	return nil
}

// Close stops all timers and waits for in-flight syncs before releasing
// subscribers.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	for _, st := range e.items {
		st.stopTimer()
	}
	e.mu.Unlock()

	e.wg.Wait()

	e.mu.Lock()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
	e.mu.Unlock()
}

// dropFromOrderLocked removes an id from the display order. Caller holds e.mu.
func (e *Engine) dropFromOrderLocked(itemID int) {
	for i, id := range e.order {
		if id == itemID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			return
		}
	}
}

func (e *Engine) notifyUser(ctx context.Context, severity notify.Severity, message string) {
	if e.sink == nil {
		return
	}
	e.sink.Notify(ctx, severity, message)
}

// emit fans an event out to subscribers without blocking; laggards drop
// events and recover by re-reading Snapshot.
func (e *Engine) emit(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	for _, ch := range e.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
