// Package selection tracks which request is current so that late responses
// for an abandoned pair or filter are dropped.
package selection

import (
	"context"
	"sync"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
)

// Ticket identifies one started request.
type Ticket struct {
	Generation uint64
	Key        pairs.Key
}

// Tracker hands out tickets. Starting a request cancels the previous one; a
// result may be applied only while its ticket is current. The zero value is
// ready to use.
type Tracker struct {
	mu         sync.Mutex
	generation uint64
	key        pairs.Key
	cancel     context.CancelFunc
}

// Begin starts a request for key, cancelling whatever was in flight.
func (t *Tracker) Begin(parent context.Context, key pairs.Key) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.generation++
	t.key = key
	t.cancel = cancel
	return ctx, Ticket{Generation: t.generation, Key: key}
}

// Current reports whether ticket belongs to the latest Begin.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ticket.Generation == t.generation
}

// Key returns the key of the latest Begin.
func (t *Tracker) Key() pairs.Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.key
}

// Stop cancels the in-flight request, if any, and invalidates its ticket.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.generation++
}

// Reconcile picks the selection to show after a pairs refresh. An empty list
// keeps the current selection; otherwise a selection that is unset or no
// longer listed moves to the first pair.
func Reconcile(current pairs.Key, list []pairs.Pair) pairs.Key {
	if len(list) == 0 {
		return current
	}
	if !current.IsZero() {
		for _, p := range list {
			if p.Key() == current {
				return current
			}
		}
	}
	return list[0].Key()
}
