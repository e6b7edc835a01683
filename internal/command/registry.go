package command

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// binding is a registered descriptor plus everything derived from it once at
// registration time.
type binding struct {
	desc     *Descriptor
	primary  string        // effective primary alias, prefix applied
	aliases  []string      // full alias list in precedence order
	flagSpec map[rune]bool // flag -> requires value
	usage    string        // cached usage suffix
}

// Registry owns the set of registered command descriptors, their alias trie
// and their cached usage strings. Registration is single-threaded and
// completes before dispatch begins; the registry is immutable afterwards and
// safe for concurrent reads without locking.
type Registry struct {
	prefix   string
	theme    Theme
	commands map[string]*binding
	trie     *aliasTrie
	logger   *zap.Logger
}

// NewRegistry creates an empty registry. The prefix is applied to aliases
// that request it, e.g. prefix "cp" turns prefixed alias "confirm" into
// "cp confirm" and directly-prefixed "confirm" into "cpconfirm".
func NewRegistry(prefix string, logger *zap.Logger) *Registry {
	return &Registry{
		prefix:   prefix,
		theme:    DefaultTheme,
		commands: make(map[string]*binding),
		trie:     newAliasTrie(),
		logger:   logger,
	}
}

// Prefix returns the configured command prefix.
func (r *Registry) Prefix() string { return r.prefix }

// SetTheme replaces the usage decoration markers. Call before registering.
func (r *Registry) SetTheme(theme Theme) { r.theme = theme }

// Register adds a descriptor. Extra static aliases may be appended for
// commands that cannot declare their own, e.g. built-ins aliased by the
// embedding application. A duplicate primary alias or a trie terminal
// already owned by another descriptor is a fatal registration error.
func (r *Registry) Register(d *Descriptor, staticAliases ...string) error {
	b := &binding{
		desc:     d,
		aliases:  r.aliasList(d, staticAliases),
		flagSpec: parseFlagSpec(d.Flags),
		usage:    buildUsage(d, r.theme),
	}
	b.primary = b.aliases[0]

	if _, exists := r.commands[b.primary]; exists {
		return &DuplicateRegistrationError{Alias: b.primary}
	}
	for _, alias := range b.aliases {
		if err := r.trie.insert(strings.Fields(alias), b.primary); err != nil {
			return err
		}
	}
	r.commands[b.primary] = b
	r.logger.Debug("registered command",
		zap.String("command", b.primary),
		zap.Strings("aliases", b.aliases))
	return nil
}

// aliasList computes the full alias list in fixed precedence order: the
// primary alias (optionally prefixed), plain aliases, prefix-joined aliases,
// directly-prefixed aliases, then static aliases.
func (r *Registry) aliasList(d *Descriptor, static []string) []string {
	aliases := make([]string, 0,
		1+len(d.Aliases)+len(d.PrefixedAliases)+len(d.DirectlyPrefixedAliases)+len(static))

	switch {
	case d.DirectlyPrefixPrimary:
		aliases = append(aliases, r.prefix+d.PrimaryAlias)
	case d.PrefixPrimary:
		aliases = append(aliases, r.prefix+" "+d.PrimaryAlias)
	default:
		aliases = append(aliases, d.PrimaryAlias)
	}
	for _, a := range d.Aliases {
		if a != "" {
			aliases = append(aliases, a)
		}
	}
	for _, a := range d.PrefixedAliases {
		if a != "" {
			aliases = append(aliases, r.prefix+" "+a)
		}
	}
	for _, a := range d.DirectlyPrefixedAliases {
		if a != "" {
			aliases = append(aliases, r.prefix+a)
		}
	}
	for _, a := range static {
		if a != "" {
			aliases = append(aliases, a)
		}
	}
	return aliases
}

// Resolve rewrites raw tokens through the alias trie (longest match wins).
func (r *Registry) Resolve(tokens []string) []string {
	return r.trie.resolve(tokens)
}

// Lookup returns the descriptor registered under the given effective
// primary alias, or nil.
func (r *Registry) Lookup(name string) *Descriptor {
	if b, ok := r.commands[name]; ok {
		return b.desc
	}
	return nil
}

// Has reports whether a command is registered under the given name.
func (r *Registry) Has(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// lookupBinding is the dispatcher's view of a registered command.
func (r *Registry) lookupBinding(name string) *binding {
	return r.commands[name]
}

// UsageLines returns the usage block for a command as invoked: the command
// line with its cached argument suffix, plus the help line when present.
func (r *Registry) UsageLines(invoked string, d *Descriptor) []string {
	b := r.commands[invoked]
	line := "/" + invoked
	if b != nil && b.usage != "" {
		line += " " + b.usage
	}
	lines := []string{line}
	if d != nil && d.Help != "" {
		lines = append(lines, d.Help)
	}
	return lines
}

// List returns all registered descriptors sorted by effective primary alias.
func (r *Registry) List() []*Descriptor {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Descriptor, len(names))
	for i, name := range names {
		out[i] = r.commands[name].desc
	}
	return out
}

// Primaries returns the sorted effective primary aliases.
func (r *Registry) Primaries() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
