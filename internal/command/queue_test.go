package command

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testActor implements Actor for tests, recording replies.
type testActor struct {
	id      string
	denied  map[string]bool
	mu      sync.Mutex
	replies []string
}

func newTestActor(id string) *testActor {
	return &testActor{id: id}
}

func (a *testActor) ID() string   { return a.id }
func (a *testActor) Name() string { return a.id }

func (a *testActor) HasPermission(node string) bool { return !a.denied[node] }

func (a *testActor) Reply(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies = append(a.replies, text)
}

func (a *testActor) lastReply() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.replies) == 0 {
		return ""
	}
	return a.replies[len(a.replies)-1]
}

// queuedAction is a Queued handler whose confirm action counts executions.
type queuedAction struct {
	expiry    time.Duration
	prompt    string
	runOK     bool
	confirmed atomic.Int32
}

func newQueuedAction(expiry time.Duration) *queuedAction {
	return &queuedAction{expiry: expiry, runOK: true}
}

func (q *queuedAction) Run(Actor, *Context) bool  { return q.runOK }
func (q *queuedAction) Confirm(Actor)             { q.confirmed.Add(1) }
func (q *queuedAction) Expiration() time.Duration { return q.expiry }
func (q *queuedAction) ConfirmPrompt() string     { return q.prompt }

func TestConfirmationLifecycle(t *testing.T) {
	table := NewConfirmationTable()
	actor := newTestActor("alice")
	q := newQueuedAction(time.Minute)

	table.Queue(actor.ID(), q)
	if !table.Confirm(actor) {
		t.Fatal("first confirm should succeed")
	}
	if q.confirmed.Load() != 1 {
		t.Errorf("confirm action ran %d times, want 1", q.confirmed.Load())
	}
	if table.Confirm(actor) {
		t.Error("second confirm should find nothing")
	}
}

func TestConfirmationExpiry(t *testing.T) {
	table := NewConfirmationTable()
	now := time.Now()
	table.now = func() time.Time { return now }

	actor := newTestActor("alice")
	q := newQueuedAction(30 * time.Second)
	table.Queue(actor.ID(), q)

	// Past the deadline: cleared, never executed.
	now = now.Add(31 * time.Second)
	if table.Confirm(actor) {
		t.Fatal("expired entry must not confirm")
	}
	if q.confirmed.Load() != 0 {
		t.Error("expired confirm action executed")
	}
	// The failed confirm cleared the slot.
	if table.Confirm(actor) {
		t.Error("slot should be empty after expired confirm")
	}

	// Fresh entry confirmed inside the window.
	q2 := newQueuedAction(30 * time.Second)
	table.Queue(actor.ID(), q2)
	now = now.Add(29 * time.Second)
	if !table.Confirm(actor) {
		t.Fatal("confirm inside the window should succeed")
	}
}

func TestQueueReplacesPrior(t *testing.T) {
	table := NewConfirmationTable()
	actor := newTestActor("alice")
	first := newQueuedAction(time.Minute)
	second := newQueuedAction(time.Minute)

	table.Queue(actor.ID(), first)
	table.Queue(actor.ID(), second)

	if !table.Confirm(actor) {
		t.Fatal("confirm should succeed")
	}
	if first.confirmed.Load() != 0 {
		t.Error("replaced entry executed")
	}
	if second.confirmed.Load() != 1 {
		t.Error("latest entry did not execute")
	}
}

func TestRemoveOnlyMatchingEntry(t *testing.T) {
	table := NewConfirmationTable()
	actor := newTestActor("alice")

	stale := newQueuedAction(time.Minute)
	current := newQueuedAction(time.Minute)
	table.Queue(actor.ID(), stale)
	table.Queue(actor.ID(), current)

	// stale was already replaced; removing it must not clobber current.
	if table.Remove(actor.ID(), stale) {
		t.Error("stale remove should be a no-op")
	}
	if !table.Remove(actor.ID(), current) {
		t.Error("current entry should remove")
	}
	if table.Confirm(actor) {
		t.Error("slot should be empty after remove")
	}
}

func TestConcurrentConfirmSingleWinner(t *testing.T) {
	table := NewConfirmationTable()
	actor := newTestActor("alice")
	q := newQueuedAction(time.Minute)
	table.Queue(actor.ID(), q)

	const n = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if table.Confirm(actor) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("%d confirms succeeded, want exactly 1", wins.Load())
	}
	if q.confirmed.Load() != 1 {
		t.Errorf("confirm action ran %d times, want 1", q.confirmed.Load())
	}
}
