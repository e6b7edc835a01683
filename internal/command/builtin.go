package command

import (
	"fmt"
	"strings"
)

// RegisterBuiltins registers the confirm and help commands every deployment
// gets. Extra aliases for the confirm command (which cannot declare its own
// application-specific ones) are passed through to registration.
func RegisterBuiltins(d *Dispatcher, confirmAliases ...string) error {
	if err := d.registry.Register(confirmDescriptor(d), confirmAliases...); err != nil {
		return err
	}
	return d.registry.Register(helpDescriptor(d.registry))
}

// confirmDescriptor builds the confirm command, registered directly under
// the prefix ("<prefix>confirm") so its presence disables the dispatcher's
// built-in confirm shortcut.
func confirmDescriptor(d *Dispatcher) *Descriptor {
	return &Descriptor{
		PrimaryAlias:          "confirm",
		DirectlyPrefixPrimary: true,
		PrefixedAliases:       []string{"confirm"},
		Min:                   0,
		Max:                   0,
		Desc:                  "Confirms a previously entered command.",
		Help:                  "Confirms the usage of a previously entered command, if required.",
		Permission:            "cmd.confirm",
		New: func() Handler {
			return &confirmHandler{dispatcher: d}
		},
	}
}

type confirmHandler struct {
	dispatcher *Dispatcher
}

func (h *confirmHandler) Run(actor Actor, _ *Context) bool {
	if !h.dispatcher.ConfirmQueued(actor) {
		actor.Reply(NoQueuedMessage)
	}
	return true
}

// helpDescriptor builds the help command, listing every registered command
// with its usage block.
func helpDescriptor(r *Registry) *Descriptor {
	return &Descriptor{
		PrimaryAlias:    "help",
		PrefixedAliases: []string{"help"},
		Min:             0,
		Max:             0,
		Desc:            "Lists all available commands.",
		New: func() Handler {
			return &helpHandler{registry: r}
		},
	}
}

type helpHandler struct {
	registry *Registry
}

func (h *helpHandler) Run(actor Actor, _ *Context) bool {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range h.registry.Primaries() {
		desc := h.registry.Lookup(name)
		usage := h.registry.UsageLines(name, nil)
		fmt.Fprintf(&b, "  %s", usage[0])
		if desc.Desc != "" {
			fmt.Fprintf(&b, " - %s", desc.Desc)
		}
		b.WriteString("\n")
	}
	actor.Reply(strings.TrimRight(b.String(), "\n"))
	return true
}
