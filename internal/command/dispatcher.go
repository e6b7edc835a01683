package command

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NoQueuedMessage is shown when an actor confirms with nothing pending.
const NoQueuedMessage = "Sorry, but you have not used any commands that require confirmation."

// mustConfirmFormat is the default confirmation prompt: confirm invocation,
// then a verbose expiration duration.
const mustConfirmFormat = "You must confirm the previous command by typing %s\nYou have %s to comply."

// Dispatcher orchestrates the engine: alias resolution, lookup, argument
// validation, handler invocation and confirmation queueing. It is safe for
// concurrent use once registration has completed.
type Dispatcher struct {
	registry *Registry
	table    *ConfirmationTable
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over a registry and confirmation table.
func NewDispatcher(registry *Registry, table *ConfirmationTable, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, table: table, logger: logger}
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// ConfirmInvocation is the command line an actor types to confirm a queued
// command.
func (d *Dispatcher) ConfirmInvocation() string {
	return "/" + d.registry.Prefix() + " confirm"
}

// Dispatch resolves and runs one command line, already split into tokens.
// A nil return means the handler ran successfully; failures come back as
// the typed errors in this package, with usage errors carrying the
// command's usage lines.
func (d *Dispatcher) Dispatch(actor Actor, tokens []string) error {
	if len(tokens) == 0 {
		return &NotFoundError{}
	}
	tokens = d.registry.Resolve(tokens)
	d.logger.Debug("dispatching command",
		zap.String("actor", actor.ID()),
		zap.Strings("tokens", tokens))

	// With no confirm command registered, the bare confirm invocation is
	// handled by the engine itself.
	if d.isBuiltinConfirm(tokens) {
		if !d.table.Confirm(actor) {
			return ErrNoQueuedCommand
		}
		return nil
	}

	b := d.registry.lookupBinding(tokens[0])
	if b == nil {
		return &NotFoundError{Name: tokens[0]}
	}
	if b.desc.Permission != "" && !actor.HasPermission(b.desc.Permission) {
		return &PermissionError{Node: b.desc.Permission}
	}

	ctx, err := parseArgs(tokens, b.desc, b.flagSpec)
	if err != nil {
		return d.withUsage(err, tokens[0], b.desc)
	}

	handler := b.desc.New()
	if !handler.Run(actor, ctx) {
		return d.withUsage(&UsageError{Kind: UsageExecution}, tokens[0], b.desc)
	}

	if queued, ok := handler.(Queued); ok {
		d.queue(actor, tokens[0], queued)
	}
	return nil
}

// ConfirmQueued confirms the actor's pending command, if any. Registered
// confirm commands call this rather than reaching into the table.
func (d *Dispatcher) ConfirmQueued(actor Actor) bool {
	return d.table.Confirm(actor)
}

// CancelQueued removes a pending entry by handler identity; see
// ConfirmationTable.Remove.
func (d *Dispatcher) CancelQueued(actorID string, handler Queued) bool {
	return d.table.Remove(actorID, handler)
}

// queue installs a queued handler for the actor and prompts for
// confirmation, replacing any prior pending entry.
func (d *Dispatcher) queue(actor Actor, name string, queued Queued) {
	d.table.Queue(actor.ID(), queued)
	d.logger.Debug("queued command awaiting confirmation",
		zap.String("actor", actor.ID()),
		zap.String("command", name),
		zap.Duration("expiration", queued.Expiration()))

	prompt := queued.ConfirmPrompt()
	if prompt == "" {
		prompt = fmt.Sprintf(mustConfirmFormat,
			d.ConfirmInvocation(), verboseDuration(queued.Expiration()))
	}
	actor.Reply(prompt)
}

// isBuiltinConfirm reports whether tokens are exactly the confirm invocation
// while no confirm command is registered under the prefix.
func (d *Dispatcher) isBuiltinConfirm(tokens []string) bool {
	prefix := d.registry.Prefix()
	if d.registry.Has(prefix+"confirm") || d.registry.Has(prefix+" confirm") {
		return false
	}
	return len(tokens) == 2 &&
		strings.EqualFold(tokens[0], prefix) &&
		strings.EqualFold(tokens[1], "confirm")
}

// withUsage attaches the command's usage lines to a usage error.
func (d *Dispatcher) withUsage(err error, invoked string, desc *Descriptor) error {
	if ue, ok := err.(*UsageError); ok {
		ue.Usage = d.registry.UsageLines(invoked, desc)
	}
	return err
}
