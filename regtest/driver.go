package regtest

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Driver sends a request to a node and returns its raw response. Error
// replies are responses too; the caller interprets them.
type Driver interface {
	Request(ctx context.Context, method string, params ...string) (string, error)
}

var _ Driver = (*CLIDriver)(nil)

// runFunc runs a program and returns what it printed.
type runFunc func(ctx context.Context, name string, args ...string) (string, error)

// CLIDriver is a Driver running bitcoin-cli for every request.
type CLIDriver struct {
	cfg *Config
	run runFunc
}

// NewCLIDriver returns a driver for the node described by cfg.
func NewCLIDriver(cfg *Config) *CLIDriver {
	return &CLIDriver{cfg: cfg, run: runCommand}
}

// Request runs bitcoin-cli with method and params.
func (d *CLIDriver) Request(ctx context.Context, method string, params ...string) (string, error) {
	args := append(d.cfg.baseArgs(), method)
	args = append(args, params...)
	log.Tracef("Requesting %s %s", method, strings.Join(params, " "))
	return d.run(ctx, d.cfg.CLIPath(), args...)
}

// runCommand runs name and returns its trimmed standard error if it wrote
// any, and its trimmed standard output otherwise. A non-zero exit status
// is not an error: the tools report failures on standard error.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if errOutput := strings.TrimSpace(stderr.String()); errOutput != "" {
		return errOutput, nil
	}
	if err != nil {
		exitErr := &exec.ExitError{}
		if !errors.As(err, &exitErr) {
			return "", errors.Wrapf(err, "error running %s", name)
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}
