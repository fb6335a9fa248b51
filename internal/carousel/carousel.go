// Package carousel implements a paged window over an ordered list whose page
// changes are committed only when the slide transition finishes.
package carousel

// Phase is the transition state of a Carousel.
type Phase int

const (
	// Idle means no transition is pending.
	Idle Phase = iota
	// Transitioning means a navigation was accepted and waits for TransitionEnd.
	Transitioning
)

func (p Phase) String() string {
	if p == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// Variant selects the slide animation of a pending transition.
type Variant int

const (
	VariantNone Variant = iota
	VariantPrev
	VariantNext
)

func (v Variant) String() string {
	switch v {
	case VariantPrev:
		return "prev"
	case VariantNext:
		return "next"
	default:
		return ""
	}
}

// Carousel holds a sliding window over items.
//
// The zero value is not usable; build one with New.
type Carousel[T any] struct {
	items     []T
	step      int
	committed int
	pending   int
	phase     Phase
	variant   Variant
}

// New returns an idle carousel positioned at the first item. A step below 1
// is treated as 1. Step is also the number of items shown at once.
func New[T any](items []T, step int) *Carousel[T] {
	if step < 1 {
		step = 1
	}
	c := &Carousel[T]{step: step}
	c.SetItems(items)
	return c
}

// SetItems replaces the list wholesale and rewinds to the first page.
func (c *Carousel[T]) SetItems(items []T) {
	c.items = append([]T(nil), items...)
	c.committed = 0
	c.pending = 0
	c.phase = Idle
	c.variant = VariantNone
}

// RequestPrevious starts a transition one step back. It reports whether the
// request was accepted.
func (c *Carousel[T]) RequestPrevious() bool {
	if !c.CanPrevious() {
		return false
	}
	c.pending = max(c.committed-c.step, 0)
	c.phase = Transitioning
	c.variant = VariantPrev
	return true
}

// RequestNext starts a transition one step forward. It reports whether the
// request was accepted.
func (c *Carousel[T]) RequestNext() bool {
	if !c.CanNext() {
		return false
	}
	c.pending = min(c.committed+c.step, len(c.items)-1)
	c.phase = Transitioning
	c.variant = VariantNext
	return true
}

// TransitionEnd commits the pending index. It is a no-op while idle and
// reports whether anything was committed.
func (c *Carousel[T]) TransitionEnd() bool {
	if c.phase != Transitioning {
		return false
	}
	c.committed = c.pending
	c.phase = Idle
	c.variant = VariantNone
	return true
}

// CanPrevious reports whether RequestPrevious would be accepted.
func (c *Carousel[T]) CanPrevious() bool {
	return c.phase == Idle && c.committed > 0
}

// CanNext reports whether RequestNext would be accepted.
func (c *Carousel[T]) CanNext() bool {
	return c.phase == Idle && c.committed+c.step < len(c.items)
}

// Visible returns the committed window. The final window may be short.
func (c *Carousel[T]) Visible() []T {
	if len(c.items) == 0 {
		return nil
	}
	end := min(c.committed+c.step, len(c.items))
	out := make([]T, end-c.committed)
	copy(out, c.items[c.committed:end])
	return out
}

// PageCount is ceil(len(items)/step).
func (c *Carousel[T]) PageCount() int {
	return (len(c.items) + c.step - 1) / c.step
}

// CurrentPage is the zero-based page of the committed index.
func (c *Carousel[T]) CurrentPage() int {
	return c.committed / c.step
}

// PendingPage is the page a running transition will commit to. While idle it
// equals CurrentPage.
func (c *Carousel[T]) PendingPage() int {
	if c.phase != Transitioning {
		return c.CurrentPage()
	}
	return c.Pending() / c.step
}

// Committed is the index of the first visible item.
func (c *Carousel[T]) Committed() int { return c.committed }

// Pending is the index TransitionEnd will commit. It is only meaningful
// while transitioning.
func (c *Carousel[T]) Pending() int { return c.pending }

// Phase reports whether a transition is running.
func (c *Carousel[T]) Phase() Phase { return c.phase }

// Variant is the slide direction of the running transition.
func (c *Carousel[T]) Variant() Variant { return c.variant }

// Step is both the paging distance and the window size.
func (c *Carousel[T]) Step() int { return c.step }
