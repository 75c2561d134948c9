package catalog

// EventKind distinguishes the two interaction types the catalog records.
// Events themselves live only in storage: the event store appends rows
// and hands back timestamps, nothing in the domain holds one.
type EventKind string

const (
	// EventKindCopy is a formula copied to the clipboard
	EventKindCopy EventKind = "copy"
	// EventKindClick is a card opened by a visitor
	EventKindClick EventKind = "click"
)
