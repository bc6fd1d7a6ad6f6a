package process

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// Handle is a running (or finished) server started by the Supervisor.
type Handle struct {
	entrypoint string
	projectDir string
	port       int
	cmd        *exec.Cmd

	stdout *tailBuffer
	stderr *tailBuffer

	done    chan struct{}
	exitErr error

	mu    sync.Mutex
	state domain.ProcessState
}

func newHandle(projectDir, entrypoint string, port int, cmd *exec.Cmd) *Handle {
	return &Handle{
		entrypoint: entrypoint,
		projectDir: projectDir,
		port:       port,
		cmd:        cmd,
		stdout:     newTailBuffer(tailMaxBytes),
		stderr:     newTailBuffer(tailMaxBytes),
		done:       make(chan struct{}),
		state:      domain.ProcessStarting,
	}
}

// watch reaps the child and records its exit.
func (h *Handle) watch() {
	h.exitErr = h.cmd.Wait()
	close(h.done)
}

// Port returns the port the server was told to bind.
func (h *Handle) Port() int { return h.port }

// State returns the current readiness state.
func (h *Handle) State() domain.ProcessState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) setState(s domain.ProcessState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// PID returns the child's process id, or 0 if it never started.
func (h *Handle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Status returns a snapshot of the handle.
func (h *Handle) Status() domain.ProcessStatus {
	return domain.ProcessStatus{
		Entrypoint: h.entrypoint,
		ProjectDir: h.projectDir,
		Port:       h.port,
		PID:        h.PID(),
		State:      h.State(),
	}
}

// Exited reports whether the child has been reaped.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Output returns the captured stdout and stderr tails.
func (h *Handle) Output() string {
	var b strings.Builder
	if out := strings.TrimSpace(h.stdout.String()); out != "" {
		fmt.Fprintf(&b, "[stdout]\n%s\n", out)
	}
	if errOut := strings.TrimSpace(h.stderr.String()); errOut != "" {
		fmt.Fprintf(&b, "[stderr]\n%s\n", errOut)
	}
	return b.String()
}

var _ usecase.ManagedProcess = (*Handle)(nil)
