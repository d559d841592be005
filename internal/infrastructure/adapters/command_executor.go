package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	domainErrors "netadmin-agent/internal/domain/errors"
	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// RealCommandExecutor runs host tools (hostapd, wpa_cli, iw, dhclient, ...).
// A non-zero exit status becomes an INTERNAL error carrying stderr.
type RealCommandExecutor struct {
	logger         *logrus.Logger
	defaultTimeout time.Duration
}

// NewRealCommandExecutor creates a new RealCommandExecutor. defaultTimeout bounds
// every Execute call; zero leaves it to the caller's context.
func NewRealCommandExecutor(logger *logrus.Logger, defaultTimeout time.Duration) interfaces.CommandExecutor {
	return &RealCommandExecutor{logger: logger, defaultTimeout: defaultTimeout}
}

// Execute executes a command and returns its stdout
func (e *RealCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	if e.defaultTimeout > 0 {
		return e.ExecuteWithTimeout(ctx, e.defaultTimeout, command, args...)
	}
	return e.run(ctx, command, args...)
}

// ExecuteWithTimeout executes a command with timeout
func (e *RealCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := e.run(ctx, command, args...)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, domainErrors.NewTimeoutError(
			fmt.Sprintf("command timed out after %v: %s %s", timeout, command, strings.Join(args, " ")),
		)
	}
	return output, err
}

func (e *RealCommandExecutor) run(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	e.logger.WithFields(logrus.Fields{
		"command":  command,
		"args":     args,
		"duration": time.Since(start),
	}).Trace("command executed")

	if err != nil {
		return stdout.Bytes(), domainErrors.NewInternalError(
			fmt.Sprintf("command failed: %s %s", command, strings.Join(args, " ")),
			fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(stderr.String())),
		)
	}
	return stdout.Bytes(), nil
}
