package command

import (
	"sync"
	"time"
)

// Pending is a queued command instance awaiting confirmation by its actor.
type Pending struct {
	handler Queued
	created time.Time
	expiry  time.Duration
}

// ConfirmationTable holds at most one pending command per actor. It is the
// only mutable shared structure at steady state; every operation is atomic
// with respect to the per-actor slot. Expiration is checked lazily on
// confirm, there is no background sweep.
type ConfirmationTable struct {
	mu      sync.Mutex
	pending map[string]*Pending
	now     func() time.Time
}

// NewConfirmationTable creates an empty table.
func NewConfirmationTable() *ConfirmationTable {
	return &ConfirmationTable{
		pending: make(map[string]*Pending),
		now:     time.Now,
	}
}

// Queue installs a pending command for the actor, silently replacing any
// prior entry.
func (t *ConfirmationTable) Queue(actorID string, handler Queued) {
	p := &Pending{
		handler: handler,
		expiry:  handler.Expiration(),
	}
	t.mu.Lock()
	p.created = t.now()
	t.pending[actorID] = p
	t.mu.Unlock()
}

// Confirm atomically removes the actor's pending entry and executes its
// confirm action. It returns false when nothing is pending or the entry has
// expired; an expired entry is cleared and never executed. The removal
// happens under the table lock, so two concurrent confirms for one actor
// cannot both succeed, and a confirm cannot clobber an entry queued after
// the one it observed.
func (t *ConfirmationTable) Confirm(actor Actor) bool {
	t.mu.Lock()
	p, ok := t.pending[actor.ID()]
	if !ok {
		t.mu.Unlock()
		return false
	}
	delete(t.pending, actor.ID())
	expired := t.now().Sub(p.created) > p.expiry
	t.mu.Unlock()

	if expired {
		return false
	}
	p.handler.Confirm(actor)
	return true
}

// Remove deletes the actor's entry only if it holds the given handler
// instance, so a command invalidating its own queued entry cannot clobber a
// newer entry for the same actor.
func (t *ConfirmationTable) Remove(actorID string, handler Queued) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.pending[actorID]; ok && cur.handler == handler {
		delete(t.pending, actorID)
		return true
	}
	return false
}
