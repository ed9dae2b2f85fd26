package sambatool

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultToolPath is the tool name resolved through PATH when no explicit
// path is configured.
const DefaultToolPath = "samba-tool"

// subcommand is the samba-tool command group every Command belongs to.
const subcommand = "dns"

// Operands are the positional arguments following the action.
// Empty optional fields are skipped entirely.
type Operands struct {
	Server string
	Zone   string
	Name   string
	Type   string
	Data   string
}

// Command is a single samba-tool invocation. It is immutable once built.
type Command struct {
	action Action
	tokens []string
	// display is the token list with the password masked.
	display []string
}

// Action returns the subcommand this command runs.
func (c Command) Action() Action {
	return c.action
}

// Args returns a copy of the full argument vector, tool path included.
func (c Command) Args() []string {
	return slices.Clone(c.tokens)
}

// Len returns the number of tokens.
func (c Command) Len() int {
	return len(c.tokens)
}

// Equal reports whether both commands have identical tokens.
func (c Command) Equal(other Command) bool {
	return c.action == other.action && slices.Equal(c.tokens, other.tokens)
}

// String renders the command for logs. The password is masked.
func (c Command) String() string {
	return strings.Join(c.display, " ")
}

// Builder creates commands for one tool binary and one set of credentials.
type Builder struct {
	// ToolPath is the samba-tool executable. Defaults to DefaultToolPath.
	ToolPath string

	// Credentials are appended to every command.
	Credentials Credentials
}

// Build returns the command for action and operands.
// The action is checked before any token is produced.
func (b Builder) Build(action Action, ops Operands) (Command, error) {
	if !action.IsValid() {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidAction, string(action))
	}

	tool := b.ToolPath
	if tool == "" {
		tool = DefaultToolPath
	}

	head := []string{tool, subcommand, action.String(), ops.Server}
	for _, optional := range []string{ops.Zone, ops.Name, ops.Type, ops.Data} {
		if optional != "" {
			head = append(head, optional)
		}
	}

	return Command{
		action:  action,
		tokens:  append(slices.Clone(head), b.Credentials.flags()...),
		display: append(slices.Clone(head), b.Credentials.redactedFlags()...),
	}, nil
}
