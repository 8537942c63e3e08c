package op

import "fmt"

// ClientError represents different categories of op CLI errors
type ClientError interface {
	error
	Category() string
}

// CommandError represents a failed op invocation (non-zero exit)
type CommandError struct {
	Cause    error
	Args     []string
	Stderr   string
	ExitCode int
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("op command failed (exit %d): %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("op command failed (exit %d): %v", e.ExitCode, e.Cause)
}

func (e *CommandError) Category() string {
	return "command"
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// AuthError is returned when op reports the account is not signed in
type AuthError struct {
	Stderr string
}

func (e *AuthError) Error() string {
	return "not signed in to 1Password; run 'op signin' first"
}

func (e *AuthError) Category() string {
	return "auth"
}

// ParseError represents malformed JSON output from op
type ParseError struct {
	Cause  error
	Output string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode op output as JSON: %v", e.Cause)
}

func (e *ParseError) Category() string {
	return "parse"
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// VersionError is returned when the installed op CLI is missing or too old
type VersionError struct {
	Installed string
	Minimum   string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("op CLI version %s is below minimum required %s", e.Installed, e.Minimum)
}

func (e *VersionError) Category() string {
	return "version"
}

// Helper constructors for typed errors
func NewCommandError(args []string, exitCode int, stderr string, cause error) *CommandError {
	return &CommandError{Args: args, ExitCode: exitCode, Stderr: stderr, Cause: cause}
}

func NewParseError(output string, cause error) *ParseError {
	return &ParseError{Output: output, Cause: cause}
}
