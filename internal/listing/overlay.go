package listing

// OverlayState is Closed (listing visible) or Open (detail visible).
type OverlayState int

const (
	Closed OverlayState = iota
	Open
)

func (s OverlayState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Overlay holds at most one selected record. Opening while open replaces the
// record; there is no stack. The zero value is Closed. Overlay is not safe
// for concurrent use; ViewModel guards its own.
type Overlay[T any] struct {
	open   bool
	record T
}

// Open shows rec, replacing any previous selection.
func (o *Overlay[T]) Open(rec T) {
	o.record = rec
	o.open = true
}

// Close returns to the listing.
func (o *Overlay[T]) Close() {
	var zero T
	o.record = zero
	o.open = false
}

// Current returns the open record.
func (o *Overlay[T]) Current() (T, bool) {
	return o.record, o.open
}

// State reports Open or Closed.
func (o *Overlay[T]) State() OverlayState {
	if o.open {
		return Open
	}
	return Closed
}
