package router

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nidhogg/commandpost/internal/command"
	"github.com/nidhogg/commandpost/internal/gateway"
	"go.uber.org/zap"
)

// fakeAdapter captures outbound messages instead of talking to a platform.
type fakeAdapter struct {
	handler gateway.MessageHandler
	sent    []*gateway.OutboundMessage
}

func (f *fakeAdapter) Platform() string                   { return "fake" }
func (f *fakeAdapter) Connect(context.Context) error      { return nil }
func (f *fakeAdapter) OnMessage(h gateway.MessageHandler) { f.handler = h }
func (f *fakeAdapter) Close() error                       { return nil }
func (f *fakeAdapter) Status() gateway.AdapterStatus {
	return gateway.AdapterStatus{Platform: "fake", Connected: true}
}

func (f *fakeAdapter) Send(_ context.Context, msg *gateway.OutboundMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeAdapter) inbound(user, content string) {
	f.handler(&gateway.InboundMessage{
		Platform:  "fake",
		ChannelID: "chan",
		UserID:    user,
		UserName:  user,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func newTestRouter(t *testing.T, perms PermissionChecker) (*Router, *fakeAdapter) {
	t.Helper()
	logger := zap.NewNop()
	reg := command.NewRegistry("cp", logger)
	disp := command.NewDispatcher(reg, command.NewConfirmationTable(), logger)

	gw := gateway.New(logger)
	r := New(disp, gw, nil, perms, logger)
	gw.SetHandler(r.Handle)

	fake := &fakeAdapter{}
	gw.Register(fake)
	return r, fake
}

func registerEcho(t *testing.T, r *Router) {
	t.Helper()
	err := r.dispatcher.Registry().Register(&command.Descriptor{
		PrimaryAlias: "echo",
		Usage:        "{text}",
		Min:          1,
		Max:          command.UnboundedArgs,
		Permission:   "cmd.echo",
		New: func() command.Handler {
			return echoHandler{}
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
}

type echoHandler struct{}

func (echoHandler) Run(actor command.Actor, ctx *command.Context) bool {
	actor.Reply(strings.Join(ctx.Args(), " "))
	return true
}

func TestRouterDispatchesSlashCommands(t *testing.T) {
	r, fake := newTestRouter(t, nil)
	registerEcho(t, r)

	fake.inbound("alice", "/echo hello world")
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	if fake.sent[0].Content != "hello world" {
		t.Errorf("reply = %q", fake.sent[0].Content)
	}
}

func TestRouterIgnoresPlainChat(t *testing.T) {
	r, fake := newTestRouter(t, nil)
	registerEcho(t, r)

	fake.inbound("alice", "just chatting")
	fake.inbound("alice", "   ")
	if len(fake.sent) != 0 {
		t.Fatalf("plain chat produced %d replies", len(fake.sent))
	}
}

func TestRouterRendersUsageError(t *testing.T) {
	r, fake := newTestRouter(t, nil)
	registerEcho(t, r)

	fake.inbound("alice", "/echo")
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	reply := fake.sent[0].Content
	if !strings.Contains(reply, "too few arguments") || !strings.Contains(reply, "/echo") {
		t.Errorf("reply = %q", reply)
	}
}

func TestRouterRendersUnknownCommand(t *testing.T) {
	r, fake := newTestRouter(t, nil)
	registerEcho(t, r)

	fake.inbound("alice", "/nosuch")
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	if !strings.Contains(fake.sent[0].Content, "Unknown command") {
		t.Errorf("reply = %q", fake.sent[0].Content)
	}
}

func TestRouterPermissionCheck(t *testing.T) {
	denyAll := func(actorID, node string) bool { return false }
	r, fake := newTestRouter(t, denyAll)
	registerEcho(t, r)

	fake.inbound("alice", "/echo hi")
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	if !strings.Contains(fake.sent[0].Content, "permission") {
		t.Errorf("reply = %q", fake.sent[0].Content)
	}
}
