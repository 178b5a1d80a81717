package cart

// EventKind labels a change the engine announces to subscribers.
type EventKind string

const (
	// EventCartUpdated signals that the snapshot changed and should be re-read.
	EventCartUpdated EventKind = "cart_updated"
	// EventRemovalPrompt asks the UI to show the removal confirmation for
	// ItemID; it must be answered via ConfirmRemoval or CancelRemoval.
	EventRemovalPrompt EventKind = "removal_prompt"
)

// Event is a lightweight change notice; subscribers pull the actual state via
// Snapshot.
type Event struct {
	Kind   EventKind
	ItemID int
}
