package command

import (
	"fmt"
	"regexp"
	"strings"
)

// Theme holds the cosmetic markers wrapped around usage placeholders. The
// defaults are chat markdown; a platform binding may substitute its own
// markup. Markers have no effect on parsing.
type Theme struct {
	RequiredArg string // wraps {required} groups
	OptionalArg string // wraps [optional] groups and flag tokens
}

// DefaultTheme renders required groups bold and optional groups italic.
var DefaultTheme = Theme{RequiredArg: "**", OptionalArg: "*"}

var (
	optionalArgsPattern = regexp.MustCompile(`\[.+?\]`)
	requiredArgsPattern = regexp.MustCompile(`\{.+?\}`)
)

// buildUsage renders a descriptor's cached usage suffix: the decorated
// argument template followed by one optional token per declared flag.
// Called once at registration, never per dispatch.
func buildUsage(d *Descriptor, theme Theme) string {
	var b strings.Builder
	b.WriteString(decorateTemplate(d.Usage, theme))

	runes := []rune(d.Flags)
	for i := 0; i < len(runes); i++ {
		token := fmt.Sprintf("[-%c]", runes[i])
		if i+1 < len(runes) && runes[i+1] == ':' {
			token = fmt.Sprintf("[-%c VALUE]", runes[i])
			i++
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(theme.OptionalArg + token + theme.OptionalArg)
	}
	return b.String()
}

// decorateTemplate wraps {required} and [optional] argument groups with the
// theme markers.
func decorateTemplate(template string, theme Theme) string {
	if template == "" {
		return template
	}
	out := requiredArgsPattern.ReplaceAllStringFunc(template, func(m string) string {
		return theme.RequiredArg + m + theme.RequiredArg
	})
	return optionalArgsPattern.ReplaceAllStringFunc(out, func(m string) string {
		return theme.OptionalArg + m + theme.OptionalArg
	})
}
