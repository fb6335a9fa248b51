// Package toggle flips on/off state optimistically while the backend
// mutation is in flight and reconciles when it completes.
package toggle

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/five82/homedash/internal/homeapi"
)

var (
	// ErrInFlight is returned by Begin under PolicyReject when the id already
	// has a mutation outstanding.
	ErrInFlight = errors.New("toggle already in flight")
	// ErrQueued is returned by Begin under PolicyQueue when the request was
	// deferred behind an outstanding mutation.
	ErrQueued = errors.New("toggle queued")
	// ErrClosed is returned once the controller's owner has gone away.
	ErrClosed = errors.New("toggle controller closed")
)

// Policy decides what a toggle does while the same id is in flight.
type Policy int

const (
	PolicyReject Policy = iota
	PolicyQueue
)

func (p Policy) String() string {
	if p == PolicyQueue {
		return "queue"
	}
	return "reject"
}

// ParsePolicy accepts "reject" or "queue". Empty means reject.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "reject":
		return PolicyReject, nil
	case "queue":
		return PolicyQueue, nil
	default:
		return PolicyReject, fmt.Errorf("unknown toggle policy %q", value)
	}
}

// Mutation is one optimistic flip awaiting its backend result.
type Mutation struct {
	ID       string
	Previous bool
	Desired  bool
	seq      uint64
}

// Outcome classifies how a mutation ended.
type Outcome int

const (
	// OutcomeConfirmed means the backend accepted the change.
	OutcomeConfirmed Outcome = iota
	// OutcomeReverted means the backend rejected it and the flip was undone.
	OutcomeReverted
	// OutcomeSessionExpired means the flip was undone and the session must end.
	OutcomeSessionExpired
	// OutcomeStale means the result arrived after its owner went away and
	// was not applied.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeReverted:
		return "reverted"
	case OutcomeSessionExpired:
		return "session_expired"
	default:
		return "stale"
	}
}

// Resolution reports what Resolve did.
type Resolution struct {
	Mutation Mutation
	Outcome  Outcome
	Err      error
	// Next is the queued toggle for the same id that has now begun.
	Next *Mutation
}

// Controller owns the id → on/off map of one view. It is safe for
// concurrent use.
type Controller struct {
	mu       sync.Mutex
	policy   Policy
	state    map[string]bool
	inflight map[string]Mutation
	queued   map[string]int
	seq      uint64
	closed   bool
}

// New returns an empty controller.
func New(policy Policy) *Controller {
	return &Controller{
		policy:   policy,
		state:    make(map[string]bool),
		inflight: make(map[string]Mutation),
		queued:   make(map[string]int),
	}
}

// Policy returns the configured overlap policy.
func (c *Controller) Policy() Policy { return c.policy }

// Replace loads authoritative state wholesale. Ids with a mutation in flight
// keep their optimistic value until that mutation resolves.
func (c *Controller) Replace(states map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.replaceLocked(states)
}

func (c *Controller) replaceLocked(states map[string]bool) {
	next := make(map[string]bool, len(states))
	maps.Copy(next, states)
	for id, m := range c.inflight {
		next[id] = m.Desired
	}
	c.state = next
}

// State returns the displayed value for id.
func (c *Controller) State(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state[id]
}

// Snapshot copies the displayed map.
func (c *Controller) Snapshot() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.state)
}

// InFlight reports whether id has an outstanding mutation.
func (c *Controller) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[id]
	return ok
}

// Queued returns how many toggles wait behind the in-flight one for id.
func (c *Controller) Queued(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queued[id]
}

// Begin flips id optimistically and returns the mutation to send. The flip
// is visible to State before Begin returns.
func (c *Controller) Begin(id string) (Mutation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Mutation{}, ErrClosed
	}
	if _, busy := c.inflight[id]; busy {
		if c.policy == PolicyQueue {
			c.queued[id]++
			return Mutation{}, ErrQueued
		}
		return Mutation{}, ErrInFlight
	}
	return c.beginLocked(id), nil
}

func (c *Controller) beginLocked(id string) Mutation {
	c.seq++
	current := c.state[id]
	m := Mutation{ID: id, Previous: current, Desired: !current, seq: c.seq}
	c.state[id] = m.Desired
	c.inflight[id] = m
	return m
}

// Resolve applies the backend result of m. On success, authoritative (when
// non-nil) replaces the whole map. On failure the flip is undone. A queued
// toggle for the same id begins from the reconciled value and is returned in
// Resolution.Next.
func (c *Controller) Resolve(m Mutation, err error, authoritative map[string]bool) Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Resolution{Mutation: m, Err: err}
	current, ok := c.inflight[m.ID]
	if c.closed || !ok || current.seq != m.seq {
		res.Outcome = OutcomeStale
		return res
	}
	delete(c.inflight, m.ID)

	switch {
	case err == nil:
		res.Outcome = OutcomeConfirmed
		if authoritative != nil {
			c.replaceLocked(authoritative)
		}
	case homeapi.IsSessionExpired(err):
		res.Outcome = OutcomeSessionExpired
		c.state[m.ID] = m.Previous
		clear(c.queued)
		return res
	default:
		res.Outcome = OutcomeReverted
		c.state[m.ID] = m.Previous
	}

	if c.queued[m.ID] > 0 {
		c.queued[m.ID]--
		if c.queued[m.ID] == 0 {
			delete(c.queued, m.ID)
		}
		next := c.beginLocked(m.ID)
		res.Next = &next
	}
	return res
}

// Abandon releases m without a backend verdict, for a cycle whose context
// ended part way through. The flip is kept when accepted is set and undone
// otherwise. Toggles queued behind m are dropped. It reports false when m
// was no longer in flight.
func (c *Controller) Abandon(m Mutation, accepted bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.inflight[m.ID]
	if !ok || current.seq != m.seq {
		return false
	}
	delete(c.inflight, m.ID)
	delete(c.queued, m.ID)
	if !accepted && !c.closed {
		c.state[m.ID] = m.Previous
	}
	return true
}

// Close ends the controller's lifetime. Later Begin calls fail and pending
// results are discarded as stale.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	clear(c.queued)
}
