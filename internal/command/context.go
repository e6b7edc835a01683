package command

import "strings"

// Context carries the validated arguments of one command invocation:
// positional arguments in order, the set of flags present, and the values
// supplied for value flags.
type Context struct {
	args   []string
	flags  map[rune]bool
	values map[rune]string
}

// ArgsLength returns the number of positional arguments.
func (c *Context) ArgsLength() int { return len(c.args) }

// Arg returns the positional argument at index i.
func (c *Context) Arg(i int) string { return c.args[i] }

// Args returns all positional arguments in order.
func (c *Context) Args() []string { return c.args }

// HasFlag reports whether the flag was supplied.
func (c *Context) HasFlag(f rune) bool { return c.flags[f] }

// FlagValue returns the value supplied for a value flag.
func (c *Context) FlagValue(f rune) (string, bool) {
	v, ok := c.values[f]
	return v, ok
}

// Flags returns the set of flags present.
func (c *Context) Flags() []rune {
	out := make([]rune, 0, len(c.flags))
	for f := range c.flags {
		out = append(out, f)
	}
	return out
}

// parseFlagSpec scans a flag specification left to right. A character
// followed by ':' is a value flag; every other character is a boolean flag.
// The result maps each flag to whether it requires a value.
func parseFlagSpec(spec string) map[rune]bool {
	flags := make(map[rune]bool)
	runes := []rune(spec)
	for i := 0; i < len(runes); i++ {
		if i+1 < len(runes) && runes[i+1] == ':' {
			flags[runes[i]] = true
			i++
			continue
		}
		flags[runes[i]] = false
	}
	return flags
}

// parseArgs splits the tokens after the command name into flags and
// positional arguments and validates them against the descriptor.
//
// A token starting with '-' holds one or more flag characters; consecutive
// boolean flags may be packed ("-ab"). A value flag takes the rest of its
// token when characters follow it ("-fVALUE"), otherwise it consumes the
// next token, which then does not count as a positional argument. A lone
// "-" is positional. Returned usage errors carry no usage lines; the
// dispatcher fills those in.
func parseArgs(tokens []string, d *Descriptor, flagSpec map[rune]bool) (*Context, error) {
	ctx := &Context{
		flags:  make(map[rune]bool),
		values: make(map[rune]string),
	}
	for i := 1; i < len(tokens); i++ {
		token := tokens[i]
		if !strings.HasPrefix(token, "-") || len(token) < 2 {
			ctx.args = append(ctx.args, token)
			continue
		}
		chars := []rune(token[1:])
		for j := 0; j < len(chars); j++ {
			f := chars[j]
			ctx.flags[f] = true
			requiresValue, known := flagSpec[f]
			if !known {
				if !d.AnyFlags {
					return nil, &UsageError{Kind: UnknownFlag, Flag: f}
				}
				continue
			}
			if !requiresValue {
				continue
			}
			if _, dup := ctx.values[f]; dup {
				return nil, &UsageError{Kind: DuplicateFlagValue, Flag: f}
			}
			if j < len(chars)-1 {
				// "-fVALUE": the rest of the token is the value.
				ctx.values[f] = string(chars[j+1:])
				j = len(chars)
				continue
			}
			if i+1 >= len(tokens) {
				return nil, &UsageError{Kind: MissingFlagValue, Flag: f}
			}
			i++
			ctx.values[f] = tokens[i]
		}
	}
	if len(ctx.args) < d.Min {
		return nil, &UsageError{Kind: TooFewArguments}
	}
	if d.Max != UnboundedArgs && len(ctx.args) > d.Max {
		return nil, &UsageError{Kind: TooManyArguments}
	}
	return ctx, nil
}
