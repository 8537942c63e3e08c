package op

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	goversion "github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

// MinVersion is the oldest op CLI release the client is known to work with
const MinVersion = "2.25.0"

const (
	defaultRetries   = 3
	defaultBaseDelay = time.Second
)

// Stderr fragments op emits when the session is missing or expired
var authErrorFragments = []string{
	"not currently signed in",
	"account is not signed in",
	"not signed in",
}

// Runner executes a single op invocation and returns its stdout.
// The reconciler and resource services are tested against a substitute
// implementation; ExecRunner is the real one.
type Runner interface {
	Run(ctx context.Context, args []string) ([]byte, error)
}

// ExecRunner invokes the op binary as a subprocess
type ExecRunner struct {
	path   string
	env    []string
	logger *zap.Logger
}

// NewExecRunner creates a runner for the op binary at path. The service
// account token, when set, is injected via OP_SERVICE_ACCOUNT_TOKEN.
func NewExecRunner(path, serviceAccountToken string, logger *zap.Logger) (*ExecRunner, error) {
	if path == "" {
		path = "op"
	}
	cleanPath := filepath.Clean(path)
	if !isValidOpPath(cleanPath) {
		return nil, cerr.Newf("invalid op binary path: %s", path)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	env := os.Environ()
	if serviceAccountToken != "" {
		env = append(env, "OP_SERVICE_ACCOUNT_TOKEN="+serviceAccountToken)
	}

	return &ExecRunner{path: cleanPath, env: env, logger: logger}, nil
}

// Run executes op with the given argv and returns stdout. Non-zero exits
// are classified into AuthError or CommandError.
func (r *ExecRunner) Run(ctx context.Context, args []string) ([]byte, error) {
	r.logger.Debug("executing op command", zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, r.path, args...) //nolint:gosec // path validated by isValidOpPath
	cmd.Env = r.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		exitCode := -1
		if cerr.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		errMsg := strings.TrimSpace(stderr.String())
		r.logger.Error("op command failed",
			zap.Strings("args", args),
			zap.Int("exit_code", exitCode),
			zap.String("stderr", errMsg),
			zap.Duration("elapsed", elapsed),
		)

		if isAuthError(errMsg) {
			return nil, &AuthError{Stderr: errMsg}
		}
		return nil, NewCommandError(args, exitCode, extractErrorLine(errMsg), err)
	}

	r.logger.Debug("op command succeeded",
		zap.Strings("args", args),
		zap.Duration("elapsed", elapsed),
	)
	return stdout.Bytes(), nil
}

// Client issues typed op commands through a Runner, handling the account
// option, JSON decoding, and rate-limit backoff.
type Client struct {
	runner  Runner
	account string
	retries int
	delay   time.Duration
	sleep   func(time.Duration)
	logger  *zap.Logger
}

// ClientOptions configures a Client. Zero values get sane defaults.
type ClientOptions struct {
	Account   string
	Retries   int
	BaseDelay time.Duration
	Logger    *zap.Logger
}

// NewClient creates a client over the given runner
func NewClient(runner Runner, opts ClientOptions) *Client {
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		runner:  runner,
		account: opts.Account,
		retries: opts.Retries,
		delay:   opts.BaseDelay,
		sleep:   time.Sleep,
		logger:  opts.Logger,
	}
}

// Do executes the command and decodes JSON output into out when the
// command expects JSON and out is non-nil. Rate-limited invocations are
// retried with exponential backoff.
func (c *Client) Do(ctx context.Context, cmd *Command, out any) error {
	if c.account != "" {
		cmd.Account(c.account)
	}
	argv := cmd.Build()

	output, err := c.runWithBackoff(ctx, argv)
	if err != nil {
		return err
	}

	if out == nil || !cmd.WantsJSON() {
		return nil
	}

	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return NewParseError(string(trimmed), err)
	}
	return nil
}

func (c *Client) runWithBackoff(ctx context.Context, argv []string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		output, err := c.runner.Run(ctx, argv)
		if err == nil {
			return output, nil
		}
		lastErr = err

		if !isRateLimited(err) {
			return nil, err
		}
		if attempt == c.retries-1 {
			break
		}

		backoff := c.delay * (1 << attempt)
		c.logger.Warn("op rate limit hit, backing off",
			zap.Duration("delay", backoff),
			zap.Int("attempt", attempt+1),
		)
		c.sleep(backoff)
	}
	return nil, cerr.Wrapf(lastErr, "rate limit retries exhausted after %d attempts", c.retries)
}

// Version reports the installed op CLI version
func (c *Client) Version(ctx context.Context) (*goversion.Version, error) {
	output, err := c.runner.Run(ctx, []string{"--version"})
	if err != nil {
		return nil, cerr.Wrap(err, "failed to query op version")
	}

	v, err := goversion.NewVersion(strings.TrimSpace(string(output)))
	if err != nil {
		return nil, cerr.Wrapf(err, "invalid op version output %q", strings.TrimSpace(string(output)))
	}
	return v, nil
}

// CheckVersion verifies the installed op CLI meets MinVersion
func (c *Client) CheckVersion(ctx context.Context) error {
	installed, err := c.Version(ctx)
	if err != nil {
		return err
	}

	minimum := goversion.Must(goversion.NewVersion(MinVersion))
	if installed.LessThan(minimum) {
		return &VersionError{Installed: installed.String(), Minimum: MinVersion}
	}
	return nil
}

// isValidOpPath validates that the op path is safe to execute
func isValidOpPath(path string) bool {
	if strings.ContainsAny(path, ";|&$`\n\r") {
		return false
	}
	if path == "op" {
		return true
	}
	return filepath.IsAbs(path)
}

func isAuthError(stderr string) bool {
	lowered := strings.ToLower(stderr)
	for _, fragment := range authErrorFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

func isRateLimited(err error) bool {
	var cmdErr *CommandError
	if !cerr.As(err, &cmdErr) {
		return false
	}
	return strings.Contains(strings.ToLower(cmdErr.Stderr), "rate limit")
}

// extractErrorLine pulls the [ERROR] line out of op stderr, falling back
// to the first line
func extractErrorLine(stderr string) string {
	lines := strings.Split(stderr, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "[ERROR]") {
			return line
		}
	}
	if len(lines) > 0 && lines[0] != "" {
		return lines[0]
	}
	return "unknown error"
}
