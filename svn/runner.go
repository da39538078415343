// Package svn provides a Subversion backend: work copy operations driven by
// the svn command line client and repository management via svnadmin.
package svn

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/treepunch/treepunch/logging"
)

// Runner executes a version control command in a folder and returns its
// standard output split into lines.
type Runner interface {
	Run(dir, name string, args ...string) ([]string, error)
}

// CommandError describes a failed command. Detail holds the first line the
// command wrote to standard error, which for svn carries the actual reason.
type CommandError struct {
	Command string
	Detail  string
}

func (e *CommandError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("command failed: %s", e.Command)
	}
	return fmt.Sprintf("command failed: %s: %s", e.Command, e.Detail)
}

// execRunner runs commands through os/exec with a fixed locale so command
// output parsing is stable regardless of the user's environment.
type execRunner struct {
	encoding string
	log      *slog.Logger
}

// NewRunner creates a Runner executing real processes. encoding sets
// LC_CTYPE for the child process; empty keeps the inherited locale.
func NewRunner(encoding string) Runner {
	return &execRunner{encoding: encoding, log: logging.Sub("svn")}
}

func (r *execRunner) Run(dir, name string, args ...string) ([]string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if r.encoding != "" {
		cmd.Env = append(cmd.Env, "LC_CTYPE="+r.encoding)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if logging.Enabled(slog.LevelDebug) {
		r.log.Debug("run command", "dir", dir, "command", commandText(name, args))
	}
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Command: commandText(name, args),
			Detail:  firstLine(stderr.String()),
		}
	}
	return splitLines(stdout.String()), nil
}

func commandText(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimRight(line, "\r")
}

// splitLines splits command output into lines without terminators. Empty
// output yields no lines.
func splitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
