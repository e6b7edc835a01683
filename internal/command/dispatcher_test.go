package command

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg := NewRegistry("cp", zap.NewNop())
	return NewDispatcher(reg, NewConfirmationTable(), zap.NewNop())
}

func TestDispatchNotFound(t *testing.T) {
	d := newTestDispatcher(t)
	err := d.Dispatch(newTestActor("alice"), []string{"nope"})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "nope" {
		t.Fatalf("got %v, want NotFoundError for nope", err)
	}
}

func TestDispatchUsageErrorsCarryUsage(t *testing.T) {
	d := newTestDispatcher(t)
	desc := &Descriptor{
		PrimaryAlias: "give",
		Usage:        "{item} [count]",
		Min:          1,
		Max:          2,
		New:          func() Handler { return runFunc(func(Actor, *Context) bool { return true }) },
	}
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := d.Dispatch(newTestActor("alice"), []string{"give"})
	var ue *UsageError
	if !errors.As(err, &ue) || ue.Kind != TooFewArguments {
		t.Fatalf("got %v, want TooFewArguments", err)
	}
	if len(ue.Usage) == 0 || !strings.HasPrefix(ue.Usage[0], "/give") {
		t.Errorf("usage lines = %v", ue.Usage)
	}
}

func TestDispatchHandlerRejection(t *testing.T) {
	d := newTestDispatcher(t)
	desc := &Descriptor{
		PrimaryAlias: "warp",
		Min:          1,
		Max:          1,
		New:          func() Handler { return runFunc(func(Actor, *Context) bool { return false }) },
	}
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := d.Dispatch(newTestActor("alice"), []string{"warp", "nowhere"})
	var ue *UsageError
	if !errors.As(err, &ue) || ue.Kind != UsageExecution {
		t.Fatalf("got %v, want UsageExecution", err)
	}
}

func TestDispatchPermission(t *testing.T) {
	d := newTestDispatcher(t)
	desc := echoDescriptor("admin")
	desc.Permission = "cmd.admin"
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	actor := newTestActor("alice")
	actor.denied = map[string]bool{"cmd.admin": true}
	err := d.Dispatch(actor, []string{"admin"})
	var pe *PermissionError
	if !errors.As(err, &pe) || pe.Node != "cmd.admin" {
		t.Fatalf("got %v, want PermissionError for cmd.admin", err)
	}
}

func TestDispatchArgumentsReachHandler(t *testing.T) {
	d := newTestDispatcher(t)
	var got *Context
	desc := &Descriptor{
		PrimaryAlias: "region set",
		Flags:        "f:v",
		Min:          1,
		Max:          UnboundedArgs,
		New: func() Handler {
			return runFunc(func(_ Actor, ctx *Context) bool {
				got = ctx
				return true
			})
		},
	}
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Multi-word alias absorbs the path words, trailing tokens survive.
	err := d.Dispatch(newTestActor("alice"), []string{"region", "set", "-f", "10", "-v", "spawn"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if v, _ := got.FlagValue('f'); v != "10" {
		t.Errorf("flag f = %q, want 10", v)
	}
	if !got.HasFlag('v') || got.ArgsLength() != 1 || got.Arg(0) != "spawn" {
		t.Errorf("context = flags %v args %v", got.Flags(), got.Args())
	}
}

func TestDispatchQueuedCommandFlow(t *testing.T) {
	d := newTestDispatcher(t)
	q := newQueuedAction(90 * time.Second)
	desc := &Descriptor{
		PrimaryAlias: "purge",
		Min:          0,
		Max:          0,
		New:          func() Handler { return q },
	}
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	actor := newTestActor("alice")
	if err := d.Dispatch(actor, []string{"purge"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if q.confirmed.Load() != 0 {
		t.Fatal("queued command executed before confirmation")
	}
	prompt := actor.lastReply()
	if !strings.Contains(prompt, "/cp confirm") || !strings.Contains(prompt, "1 minute 30 seconds") {
		t.Errorf("default prompt = %q", prompt)
	}

	// No confirm command is registered, so the bare invocation is handled
	// by the dispatcher itself.
	if err := d.Dispatch(actor, []string{"cp", "confirm"}); err != nil {
		t.Fatalf("confirm dispatch: %v", err)
	}
	if q.confirmed.Load() != 1 {
		t.Error("confirm did not execute the queued command")
	}

	// A second confirm has nothing left.
	err := d.Dispatch(actor, []string{"cp", "confirm"})
	if !errors.Is(err, ErrNoQueuedCommand) {
		t.Errorf("got %v, want ErrNoQueuedCommand", err)
	}
}

func TestDispatchQueuedCustomPrompt(t *testing.T) {
	d := newTestDispatcher(t)
	q := newQueuedAction(time.Minute)
	q.prompt = "Really wipe the world? Type /cp confirm."
	desc := &Descriptor{
		PrimaryAlias: "wipe",
		Min:          0,
		Max:          0,
		New:          func() Handler { return q },
	}
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	actor := newTestActor("alice")
	if err := d.Dispatch(actor, []string{"wipe"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if actor.lastReply() != q.prompt {
		t.Errorf("prompt = %q, want custom", actor.lastReply())
	}
}

func TestDispatchRequeueReplaces(t *testing.T) {
	d := newTestDispatcher(t)
	first := newQueuedAction(time.Minute)
	second := newQueuedAction(time.Minute)
	handlers := []Handler{first, second}
	i := 0
	desc := &Descriptor{
		PrimaryAlias: "reset",
		Min:          0,
		Max:          0,
		New: func() Handler {
			h := handlers[i]
			i++
			return h
		},
	}
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	actor := newTestActor("alice")
	if err := d.Dispatch(actor, []string{"reset"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := d.Dispatch(actor, []string{"reset"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := d.Dispatch(actor, []string{"cp", "confirm"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if first.confirmed.Load() != 0 || second.confirmed.Load() != 1 {
		t.Errorf("confirms: first=%d second=%d, want 0/1",
			first.confirmed.Load(), second.confirmed.Load())
	}
}

func TestRegisteredConfirmCommandDisablesShortcut(t *testing.T) {
	d := newTestDispatcher(t)
	if err := RegisterBuiltins(d, "ok"); err != nil {
		t.Fatalf("builtins: %v", err)
	}
	q := newQueuedAction(time.Minute)
	desc := &Descriptor{
		PrimaryAlias: "purge",
		Min:          0,
		Max:          0,
		New:          func() Handler { return q },
	}
	if err := d.Registry().Register(desc); err != nil {
		t.Fatalf("register: %v", err)
	}

	actor := newTestActor("alice")
	if err := d.Dispatch(actor, []string{"purge"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// The static alias routes through the registered confirm command.
	if err := d.Dispatch(actor, []string{"ok"}); err != nil {
		t.Fatalf("confirm via static alias: %v", err)
	}
	if q.confirmed.Load() != 1 {
		t.Error("registered confirm command did not confirm")
	}

	// Nothing pending now; the command replies rather than erroring.
	if err := d.Dispatch(actor, []string{"cp", "confirm"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if actor.lastReply() != NoQueuedMessage {
		t.Errorf("reply = %q, want no-queued message", actor.lastReply())
	}
}
