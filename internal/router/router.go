package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nidhogg/commandpost/internal/command"
	"github.com/nidhogg/commandpost/internal/gateway"
	"github.com/nidhogg/commandpost/internal/store"
	"go.uber.org/zap"
)

// PermissionChecker answers whether an actor holds a permission node. The
// policy itself lives with the embedding application; a nil checker grants
// everything.
type PermissionChecker func(actorID, node string) bool

// Router turns inbound chat into command dispatches and renders the
// engine's failure taxonomy back into chat replies.
type Router struct {
	dispatcher *command.Dispatcher
	gw         *gateway.Gateway
	store      *store.Store // optional
	perms      PermissionChecker
	trigger    string
	logger     *zap.Logger
}

// New creates a message router. st may be nil to run without dispatch
// history; perms may be nil to grant all permissions.
func New(dispatcher *command.Dispatcher, gw *gateway.Gateway, st *store.Store,
	perms PermissionChecker, logger *zap.Logger) *Router {
	return &Router{
		dispatcher: dispatcher,
		gw:         gw,
		store:      st,
		perms:      perms,
		trigger:    "/",
		logger:     logger,
	}
}

// Handle routes one inbound message. Signature matches gateway.MessageHandler.
// Non-command chatter is ignored.
func (r *Router) Handle(msg *gateway.InboundMessage) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, r.trigger) {
		return
	}
	tokens := strings.Fields(strings.TrimPrefix(content, r.trigger))
	if len(tokens) == 0 {
		return
	}

	r.logger.Info("routing command",
		zap.String("platform", msg.Platform),
		zap.String("user", msg.UserName),
		zap.Strings("tokens", tokens))

	actor := &chatActor{router: r, msg: msg}
	err := r.dispatcher.Dispatch(actor, tokens)
	if err != nil {
		actor.Reply(r.renderError(err))
	}
	r.record(msg, tokens, err)
}

// renderError maps the engine's typed failures to user-facing chat text.
func (r *Router) renderError(err error) string {
	var usage *command.UsageError
	var notFound *command.NotFoundError
	var denied *command.PermissionError
	switch {
	case errors.As(err, &usage):
		return usage.Message()
	case errors.As(err, &notFound):
		return "Unknown command. Type " + r.helpInvocation() + " for available commands."
	case errors.As(err, &denied):
		return "You do not have permission to use this command."
	case errors.Is(err, command.ErrNoQueuedCommand):
		return command.NoQueuedMessage
	default:
		r.logger.Error("command dispatch error", zap.Error(err))
		return "Command error: " + err.Error()
	}
}

func (r *Router) helpInvocation() string {
	return "/" + r.dispatcher.Registry().Prefix() + " help"
}

// record writes a dispatch-history row when a store is configured.
func (r *Router) record(msg *gateway.InboundMessage, tokens []string, dispatchErr error) {
	if r.store == nil {
		return
	}
	resolved := r.dispatcher.Registry().Resolve(tokens)
	outcome := "ok"
	if dispatchErr != nil {
		outcome = dispatchErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec := store.DispatchRecord{
		Platform: msg.Platform,
		ActorID:  actorID(msg),
		Input:    strings.Join(tokens, " "),
		Command:  resolved[0],
		Outcome:  outcome,
	}
	if err := r.store.RecordDispatch(ctx, rec); err != nil {
		r.logger.Warn("dispatch history write failed", zap.Error(err))
	}
}

// actorID scopes confirmation state to the platform identity, so the same
// user name on two platforms never shares a pending command.
func actorID(msg *gateway.InboundMessage) string {
	return msg.Platform + ":" + msg.UserID
}

// chatActor binds the engine's Actor contract to an inbound chat message.
type chatActor struct {
	router *Router
	msg    *gateway.InboundMessage
}

func (a *chatActor) ID() string   { return actorID(a.msg) }
func (a *chatActor) Name() string { return a.msg.UserName }

func (a *chatActor) HasPermission(node string) bool {
	if a.router.perms == nil {
		return true
	}
	return a.router.perms(a.ID(), node)
}

func (a *chatActor) Reply(text string) {
	err := a.router.gw.Send(context.Background(), &gateway.OutboundMessage{
		Platform:  a.msg.Platform,
		ChannelID: a.msg.ChannelID,
		Content:   text,
		ReplyTo:   a.msg.ReplyTo,
	})
	if err != nil {
		a.router.logger.Error("send reply failed", zap.Error(err))
	}
}
