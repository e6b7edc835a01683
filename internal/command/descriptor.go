package command

import "time"

// UnboundedArgs disables the upper positional-argument bound on a Descriptor.
const UnboundedArgs = -1

// Actor is the entity issuing a command: a connected player, a chat user,
// a console session. Implementations are supplied by the platform binding.
type Actor interface {
	// ID uniquely identifies the actor for confirmation-state purposes.
	ID() string
	Name() string
	// HasPermission reports whether the actor may use a command guarded
	// by the given permission node. Policy lives outside this package.
	HasPermission(node string) bool
	// Reply sends a line of text back to the actor.
	Reply(text string)
}

// Handler executes a single invocation of a command. Run returns false when
// the handler rejects its parsed arguments at runtime (e.g. a value that is
// syntactically fine but semantically invalid), which surfaces the command's
// usage to the actor.
type Handler interface {
	Run(actor Actor, ctx *Context) bool
}

// Queued is implemented by handlers whose effect is deferred until the actor
// confirms it. After Run returns true the handler instance is held in the
// confirmation table; Confirm fires at most once, and only before Expiration
// has elapsed.
type Queued interface {
	Handler
	// Confirm performs the deferred effect.
	Confirm(actor Actor)
	// Expiration is how long the actor has to confirm.
	Expiration() time.Duration
	// ConfirmPrompt returns a custom confirmation message, or "" to use
	// the default prompt naming the confirm command and the expiration.
	ConfirmPrompt() string
}

// Descriptor is the immutable metadata and handler binding for one command.
// All fields are read-only after registration.
type Descriptor struct {
	// PrimaryAlias is the canonical name. Multi-word names ("group action")
	// are allowed; words are matched individually during resolution.
	PrimaryAlias string

	// PrefixPrimary registers the primary alias as "<prefix> <name>";
	// DirectlyPrefixPrimary registers it as "<prefix><name>". At most one
	// should be set.
	PrefixPrimary         bool
	DirectlyPrefixPrimary bool

	// Aliases are registered verbatim. PrefixedAliases are registered as
	// "<prefix> <alias>", DirectlyPrefixedAliases as "<prefix><alias>".
	Aliases                 []string
	PrefixedAliases         []string
	DirectlyPrefixedAliases []string

	// Flags is the flag specification: each character is a single-letter
	// flag, and a character immediately followed by ':' requires a value
	// consumed from the following token. "f:v" declares value flag -f and
	// boolean flag -v.
	Flags string

	// AnyFlags accepts flags not present in the specification instead of
	// rejecting them.
	AnyFlags bool

	// Min and Max bound the positional-argument count. Max may be
	// UnboundedArgs.
	Min, Max int

	// Usage is the argument template shown to the actor, with {required}
	// and [optional] placeholders. Flag tokens are appended automatically.
	Usage string

	// Desc is a one-line description, Help an optional longer help line
	// appended to usage output.
	Desc string
	Help string

	// Permission is the permission node checked against the actor before
	// the handler runs. Empty means unrestricted.
	Permission string

	// New constructs a fresh handler for each invocation. Queued commands
	// rely on this: the instance carries the deferred state between Run
	// and Confirm.
	New func() Handler
}
