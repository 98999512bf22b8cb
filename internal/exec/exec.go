package exec

import (
	"context"
	"errors"
	"log/slog"
	osexec "os/exec"
	"regexp"
	"strings"
	"time"

	"helios/internal/audit"
	"helios/internal/monitor"
)

var (
	ErrCommandNotAllowed = errors.New("command not allowed")
	ErrEmptyCommand      = errors.New("empty command")
)

// allowedCommands is the static whitelist. Only the first token of a command
// line is checked against it.
var allowedCommands = map[string]struct{}{
	// File system navigation
	"ls": {}, "pwd": {}, "find": {}, "grep": {}, "cat": {}, "head": {}, "tail": {},
	"wc": {}, "sort": {}, "uniq": {},
	// System info
	"whoami": {}, "date": {}, "uptime": {}, "df": {}, "free": {}, "echo": {},
	"ps": {}, "id": {}, "uname": {}, "hostname": {}, "lscpu": {}, "groups": {},
	"env": {}, "printenv": {}, "which": {}, "whereis": {},
}

// dangerousPatterns reject shell metacharacters and destructive commands even
// when the base command is whitelisted.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[;&|<>` + "`" + `$]`),
	regexp.MustCompile(`\brm\s+-rf\b`),
	regexp.MustCompile(`\bshutdown\b`),
	regexp.MustCompile(`\breboot\b`),
	regexp.MustCompile(`\bmkfs\b`),
	regexp.MustCompile(`\bdd\b`),
	regexp.MustCompile(`#`),
}

type Result struct {
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
}

// CommandAuditor receives a record per invocation, allowed or not.
type CommandAuditor interface {
	RecordCommand(rec audit.CommandRecord)
}

// Executor runs whitelisted commands on the host with a bounded timeout.
type Executor struct {
	auditor CommandAuditor
	logger  *slog.Logger
	timeout time.Duration
}

func NewExecutor(auditor CommandAuditor, timeout time.Duration, logger *slog.Logger) *Executor {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Executor{
		auditor: auditor,
		logger:  logger.With("component", "exec"),
		timeout: timeout,
	}
}

// Run validates the command line against the whitelist, executes it, and
// records the outcome with the audit collaborator.
func (e *Executor) Run(ctx context.Context, userID, commandLine string) (Result, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return Result{}, ErrEmptyCommand
	}

	if err := validate(fields[0], commandLine); err != nil {
		monitor.ExecRejectedTotal.Inc()
		e.logger.Warn("Command rejected", "user_id", userID, "command", fields[0])
		return Result{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	cmd := osexec.CommandContext(runCtx, fields[0], fields[1:]...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *osexec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, runErr
		}
	}

	result := Result{
		Command:  commandLine,
		ExitCode: exitCode,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: duration,
	}

	monitor.ExecCommandsTotal.Inc()
	if e.auditor != nil {
		e.auditor.RecordCommand(audit.CommandRecord{
			UserID:     userID,
			Command:    fields[0],
			Args:       fields[1:],
			ExitCode:   result.ExitCode,
			Stdout:     result.Stdout,
			Stderr:     result.Stderr,
			Duration:   duration,
			ExecutedAt: start,
		})
	}

	e.logger.Info("Command executed",
		"user_id", userID,
		"command", fields[0],
		"exit_code", result.ExitCode,
		"duration", duration.String(),
	)
	return result, nil
}

func validate(base, commandLine string) error {
	if _, ok := allowedCommands[base]; !ok {
		return ErrCommandNotAllowed
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(commandLine) {
			return ErrCommandNotAllowed
		}
	}
	return nil
}
