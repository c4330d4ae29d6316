package cursor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gitcnd/cursor-agent-sdk-go/internal/ndjson"
	"github.com/gitcnd/cursor-agent-sdk-go/internal/procattr"
)

const (
	// cliName is the binary looked up on $PATH when no explicit path is
	// configured.
	cliName = "cursor-agent"

	// stderrTailSize bounds how much stderr is retained for error
	// reports. The drain keeps the most recent bytes.
	stderrTailSize = 256 * 1024

	termGracePeriod = 500 * time.Millisecond
	killGracePeriod = 100 * time.Millisecond
)

// wellKnownCLIDirs are checked after $PATH, mirroring where the
// cursor.com installer places the binary.
func wellKnownCLIDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{"/usr/local/bin"}
	}
	return []string{
		filepath.Join(home, ".local", "bin"),
		"/usr/local/bin",
		filepath.Join(home, ".cursor", "bin"),
	}
}

// findCLI resolves the cursor-agent binary. An explicit override is
// trusted but must exist; otherwise $PATH and the well-known install
// locations are searched. Resolution happens before any process is
// spawned, so a failure here has no side effects.
func findCLI(override string) (string, error) {
	if override != "" {
		info, err := os.Stat(override)
		if err != nil || info.IsDir() {
			return "", &CLINotFoundError{Path: override, Cause: err}
		}
		return override, nil
	}

	if path, err := exec.LookPath(cliName); err == nil {
		return path, nil
	}

	for _, dir := range wellKnownCLIDirs() {
		candidate := filepath.Join(dir, cliName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", &CLINotFoundError{Cause: exec.ErrNotFound}
}

// processManager owns one cursor-agent process: spawn, pipes, stderr
// drain, exit collection and idempotent teardown.
type processManager struct {
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	stderr     io.ReadCloser
	reader     *ndjson.Reader
	tail       *tailBuffer
	opts       Options
	prompt     string
	cliPath    string
	stderrDone chan struct{}
	waitOnce   sync.Once
	stopOnce   sync.Once
	waitErr    error
	mu         sync.Mutex
	started    bool
}

func newProcessManager(prompt string, opts Options) *processManager {
	return &processManager{
		prompt:     prompt,
		opts:       opts,
		tail:       newTailBuffer(stderrTailSize),
		stderrDone: make(chan struct{}),
	}
}

// BuildCLIArgs builds the argument list. The prompt is not part of it:
// it travels over stdin to the `agent -` subcommand.
func (pm *processManager) BuildCLIArgs() []string {
	args := []string{
		"--print",
		"--output-format", "stream-json",
	}

	if pm.opts.Model != "" {
		args = append(args, "--model", pm.opts.Model)
	}

	// acceptEdits and bypassPermissions both map onto --force; the CLI
	// has no finer-grained switch.
	switch pm.opts.PermissionMode {
	case PermissionModeAcceptEdits, PermissionModeBypass:
		args = append(args, "--force")
	}

	if pm.opts.Resume != "" {
		args = append(args, "--resume", pm.opts.Resume)
	}

	args = append(args, pm.opts.ExtraArgs...)

	args = append(args, "agent", "-")

	return args
}

// Start resolves the binary, spawns the process and begins the stderr
// drain. On failure nothing is left running.
func (pm *processManager) Start(ctx context.Context) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.started {
		return ErrAlreadyStarted
	}

	cliPath, err := findCLI(pm.opts.CLIPath)
	if err != nil {
		return err
	}
	pm.cliPath = cliPath

	if pm.opts.Cwd != "" {
		if info, err := os.Stat(pm.opts.Cwd); err != nil || !info.IsDir() {
			return &CLIConnectionError{Message: "working directory does not exist: " + pm.opts.Cwd, Cause: err}
		}
	}

	pm.cmd = exec.CommandContext(ctx, cliPath, pm.BuildCLIArgs()...)
	pm.cmd.Dir = pm.opts.Cwd

	pm.cmd.Env = os.Environ()
	for k, v := range pm.opts.Env {
		pm.cmd.Env = append(pm.cmd.Env, k+"="+v)
	}

	procattr.Set(pm.cmd)

	stdin, err := pm.cmd.StdinPipe()
	if err != nil {
		return &CLIConnectionError{Message: "failed to create stdin pipe", Cause: err}
	}
	pm.stdout, err = pm.cmd.StdoutPipe()
	if err != nil {
		return &CLIConnectionError{Message: "failed to create stdout pipe", Cause: err}
	}
	pm.stderr, err = pm.cmd.StderrPipe()
	if err != nil {
		return &CLIConnectionError{Message: "failed to create stderr pipe", Cause: err}
	}

	pm.reader = ndjson.NewReaderSize(pm.stdout, pm.opts.MaxBufferSize)

	if err := pm.cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return &CLINotFoundError{Path: cliPath, Cause: err}
		}
		return &CLIConnectionError{Message: "failed to start " + cliName, Cause: err}
	}

	pm.opts.Logger.Debug("cursor-agent started",
		"path", cliPath, "pid", pm.cmd.Process.Pid)

	go pm.writePrompt(stdin)
	go pm.drainStderr()

	pm.started = true
	return nil
}

// writePrompt delivers the prompt over stdin and closes it. Runs in its
// own goroutine so a prompt larger than the pipe buffer cannot stall
// Start while the CLI is still booting.
func (pm *processManager) writePrompt(stdin io.WriteCloser) {
	defer stdin.Close()

	payload := pm.prompt
	if pm.opts.SystemPrompt != "" {
		payload = pm.opts.SystemPrompt + "\n\n" + pm.prompt
	}
	if _, err := io.WriteString(stdin, payload); err != nil {
		pm.opts.Logger.Debug("prompt write failed", "error", err)
	}
}

// drainStderr runs concurrently with stdout consumption so that heavy
// logging on either pipe cannot stall the other.
func (pm *processManager) drainStderr() {
	defer close(pm.stderrDone)

	buf := make([]byte, 4096)
	for {
		n, err := pm.stderr.Read(buf)
		if n > 0 {
			pm.tail.Write(buf[:n])
			if pm.opts.StderrHandler != nil {
				pm.opts.StderrHandler(buf[:n])
			}
		}
		if err != nil {
			return
		}
	}
}

// ReadLine returns the next raw record from stdout.
func (pm *processManager) ReadLine() ([]byte, error) {
	pm.mu.Lock()
	reader := pm.reader
	pm.mu.Unlock()

	if reader == nil {
		return nil, ErrNotStarted
	}
	return reader.ReadLine()
}

// Wait collects the exit status exactly once. Callers must not invoke
// it before stdout is fully consumed on the normal path.
func (pm *processManager) Wait() error {
	pm.waitOnce.Do(func() {
		pm.waitErr = pm.cmd.Wait()
	})
	return pm.waitErr
}

// ExitCode reports the process exit code after Wait has returned.
// Signal-killed processes report -1.
func (pm *processManager) ExitCode() int {
	err := pm.Wait()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// StderrTail returns the captured stderr, waiting briefly for the drain
// to observe EOF so late diagnostics are included.
func (pm *processManager) StderrTail() string {
	select {
	case <-pm.stderrDone:
	case <-time.After(killGracePeriod):
	}
	return pm.tail.String()
}

// Stop terminates the process if it is still running. Teardown is
// idempotent: SIGTERM to the process group, a bounded wait, then
// SIGKILL. Safe to call on an already-exited process.
func (pm *processManager) Stop() {
	pm.mu.Lock()
	started := pm.started
	pm.mu.Unlock()
	if !started {
		return
	}

	pm.stopOnce.Do(func() {
		done := make(chan struct{})
		go func() {
			pm.Wait()
			close(done)
		}()

		if pm.cmd.Process != nil {
			_ = procattr.SignalGroup(pm.cmd.Process, syscall.SIGTERM)
		}

		select {
		case <-done:
			return
		case <-time.After(termGracePeriod):
		}

		if pm.cmd.Process != nil {
			_ = procattr.KillGroup(pm.cmd.Process)
		}

		select {
		case <-done:
		case <-time.After(killGracePeriod):
		}
	})
}

// tailBuffer is a bounded byte sink that keeps the most recent writes.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
