package command

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoQueuedCommand is returned by a confirm attempt when the actor has no
// pending command, or only an expired one.
var ErrNoQueuedCommand = errors.New("no command queued for confirmation")

// DuplicateRegistrationError reports two descriptors claiming the same
// primary alias or the same trie terminal. Registration happens once at
// startup, so callers should treat this as fatal.
type DuplicateRegistrationError struct {
	Alias string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.Alias)
}

// NotFoundError reports that no registered command matched the input.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// PermissionError reports that the actor lacks the descriptor's permission
// node.
type PermissionError struct {
	Node string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("missing permission %q", e.Node)
}

// UsageErrorKind classifies usage failures.
type UsageErrorKind int

const (
	// TooFewArguments: positional count below the descriptor minimum.
	TooFewArguments UsageErrorKind = iota
	// TooManyArguments: positional count above a bounded maximum.
	TooManyArguments
	// UnknownFlag: a parsed flag absent from the flag specification.
	UnknownFlag
	// MissingFlagValue: a value flag at the end of input with no token to
	// consume.
	MissingFlagValue
	// DuplicateFlagValue: a value flag supplied twice.
	DuplicateFlagValue
	// UsageExecution: the handler ran but rejected its parsed arguments.
	UsageExecution
)

// UsageError is a non-fatal validation failure, always paired with the
// command's usage lines for user-facing reporting.
type UsageError struct {
	Kind  UsageErrorKind
	Flag  rune
	Usage []string
}

func (e *UsageError) Error() string {
	switch e.Kind {
	case TooFewArguments:
		return "too few arguments"
	case TooManyArguments:
		return "too many arguments"
	case UnknownFlag:
		return fmt.Sprintf("unknown flag: -%c", e.Flag)
	case MissingFlagValue:
		return fmt.Sprintf("no value specified for the -%c flag", e.Flag)
	case DuplicateFlagValue:
		return fmt.Sprintf("value flag -%c already given", e.Flag)
	default:
		return "usage error"
	}
}

// Message renders the error and usage lines for display in chat.
func (e *UsageError) Message() string {
	lines := append([]string{e.Error() + "."}, e.Usage...)
	return strings.Join(lines, "\n")
}
