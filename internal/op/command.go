package op

import "strings"

// Command assembles argv for a single op CLI invocation: resource and
// subcommand words first, then positional arguments, then --key value
// options, then --format and --account when set.
type Command struct {
	words     []string
	args      []string
	options   []string
	format    string
	account   string
	rawOutput bool
}

// NewCommand creates a builder rooted at the given resource (e.g. "vault")
func NewCommand(resource string) *Command {
	return &Command{
		words:  []string{resource},
		format: "json",
	}
}

// Sub appends a subcommand word; chain for nested commands like
// "vault group grant"
func (c *Command) Sub(sub string) *Command {
	c.words = append(c.words, sub)
	return c
}

// Arg appends a positional argument
func (c *Command) Arg(value string) *Command {
	c.args = append(c.args, value)
	return c
}

// Option appends a --name value pair. Single-letter names get a single dash.
func (c *Command) Option(name, value string) *Command {
	prefix := "--"
	if len(name) == 1 {
		prefix = "-"
	}
	c.options = append(c.options, prefix+name, value)
	return c
}

// OptionIf appends the option only when value is non-empty
func (c *Command) OptionIf(name, value string) *Command {
	if value == "" {
		return c
	}
	return c.Option(name, value)
}

// Raw disables --format json; used for mutating subcommands whose output
// is not consumed as JSON
func (c *Command) Raw() *Command {
	c.rawOutput = true
	c.format = ""
	return c
}

// Account sets the --account option applied at build time
func (c *Command) Account(account string) *Command {
	c.account = account
	return c
}

// WantsJSON reports whether the command output should be decoded as JSON
func (c *Command) WantsJSON() bool {
	return !c.rawOutput
}

// Build produces the final argv, excluding the op binary itself
func (c *Command) Build() []string {
	argv := make([]string, 0, len(c.words)+len(c.args)+len(c.options)+4)
	argv = append(argv, c.words...)
	argv = append(argv, c.args...)
	argv = append(argv, c.options...)
	if c.format != "" {
		argv = append(argv, "--format", c.format)
	}
	if c.account != "" {
		argv = append(argv, "--account", c.account)
	}
	return argv
}

// String renders the argv for logging
func (c *Command) String() string {
	return "op " + strings.Join(c.Build(), " ")
}
