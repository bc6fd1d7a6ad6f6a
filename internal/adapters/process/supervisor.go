package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
	"github.com/mahzoun/create-8004-agent/pkg/retry"
)

const (
	DefaultStartupTimeout = 60 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultStopGrace      = 5 * time.Second

	dialTimeout = time.Second
)

// DefaultRunner launches TypeScript entrypoints of generated projects.
var DefaultRunner = []string{"npx", "tsx"}

// Supervisor starts generated servers and guarantees they can be stopped.
type Supervisor struct {
	runner         []string
	env            []string
	startupTimeout time.Duration
	pollInterval   time.Duration
	stopGrace      time.Duration
	log            *slog.Logger
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithRunner sets the command prefix; the entrypoint path is appended.
func WithRunner(runner ...string) Option {
	return func(s *Supervisor) { s.runner = runner }
}

// WithEnv adds KEY=value pairs to the child environment.
func WithEnv(kv ...string) Option {
	return func(s *Supervisor) { s.env = append(s.env, kv...) }
}

// WithTimeouts overrides startup timeout, poll interval and stop grace period.
func WithTimeouts(startup, poll, grace time.Duration) Option {
	return func(s *Supervisor) {
		if startup > 0 {
			s.startupTimeout = startup
		}
		if poll > 0 {
			s.pollInterval = poll
		}
		if grace > 0 {
			s.stopGrace = grace
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Supervisor) { s.log = log }
}

// New creates a supervisor.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		runner:         DefaultRunner,
		startupTimeout: DefaultStartupTimeout,
		pollInterval:   DefaultPollInterval,
		stopGrace:      DefaultStopGrace,
		log:            slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSupervisor creates a supervisor for Wire dependency injection
func NewSupervisor(cfg *config.RuntimeConfig, log *slog.Logger) *Supervisor {
	opts := []Option{
		WithTimeouts(cfg.StartupTimeout, cfg.PollInterval, cfg.StopGrace),
		WithLogger(log),
	}
	if len(cfg.Runner) > 0 {
		opts = append(opts, WithRunner(cfg.Runner...))
	}
	return New(opts...)
}

// Start launches src/<entrypoint> inside projectDir and waits until port
// accepts TCP connections. The port itself reaches the child through the
// project's .env file, which must already be written.
func (s *Supervisor) Start(ctx context.Context, projectDir, entrypoint string, port int) (usecase.ManagedProcess, error) {
	if len(s.runner) == 0 {
		return nil, errors.New("no runner configured")
	}

	args := append(append([]string{}, s.runner[1:]...), filepath.Join("src", entrypoint))
	cmd := exec.Command(s.runner[0], args...)
	cmd.Dir = projectDir
	cmd.Env = append(os.Environ(), s.env...)
	isolate(cmd)

	h := newHandle(projectDir, entrypoint, port, cmd)
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr

	s.log.Debug("starting server", "entrypoint", entrypoint, "dir", projectDir, "port", port)

	started := time.Now()
	if err := portFree(port); err != nil {
		h.setState(domain.ProcessFailed)
		close(h.done)
		return h, &domain.StartupError{Entrypoint: entrypoint, Port: port, Cause: err}
	}
	if err := cmd.Start(); err != nil {
		h.setState(domain.ProcessFailed)
		close(h.done)
		return h, &domain.StartupError{Entrypoint: entrypoint, Port: port, Elapsed: time.Since(started), Cause: err}
	}
	go h.watch()

	if err := s.waitReady(ctx, h); err != nil {
		elapsed := time.Since(started)
		s.forceStop(h)
		h.setState(domain.ProcessFailed)
		s.log.Debug("server failed to start", "entrypoint", entrypoint, "elapsed", elapsed, "error", err)
		return h, &domain.StartupError{
			Entrypoint: entrypoint,
			Port:       port,
			Elapsed:    elapsed,
			Output:     h.Output(),
			Cause:      err,
		}
	}

	h.setState(domain.ProcessReady)
	s.log.Debug("server ready", "entrypoint", entrypoint, "pid", h.PID(), "port", port, "elapsed", time.Since(started))
	return h, nil
}

// waitReady polls the port until it accepts a connection, the child exits,
// or the startup timeout elapses.
func (s *Supervisor) waitReady(ctx context.Context, h *Handle) error {
	ctx, cancel := context.WithTimeout(ctx, s.startupTimeout)
	defer cancel()

	attempts := int(s.startupTimeout/s.pollInterval) + 1
	policy := retry.Policy{
		MaxAttempts: attempts,
		Delay:       s.pollInterval,
		Retryable: func(err error) bool {
			return !errors.Is(err, domain.ErrProcessExited)
		},
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(h.port))
	return retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		if h.Exited() {
			return fmt.Errorf("%w: %v", domain.ErrProcessExited, h.exitErr)
		}
		d := net.Dialer{Timeout: dialTimeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.Close()
		// A listener that outlived our child is not our server.
		if h.Exited() {
			return fmt.Errorf("%w: %v", domain.ErrProcessExited, h.exitErr)
		}
		return nil
	})
}

// portFree fails when something already listens on port, so a later dial
// can only succeed against the child.
func portFree(port int) error {
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("%w: %d: %v", domain.ErrPortInUse, port, err)
	}
	return l.Close()
}

// Stop terminates the process: SIGTERM, a grace period, then SIGKILL.
// It is safe to call more than once and on processes that failed to start.
func (s *Supervisor) Stop(mp usecase.ManagedProcess) error {
	h, ok := mp.(*Handle)
	if !ok || h == nil {
		return fmt.Errorf("process %v was not started by this supervisor", mp)
	}
	if h.State() == domain.ProcessStopped {
		return nil
	}

	s.forceStop(h)
	h.setState(domain.ProcessStopped)
	s.log.Debug("server stopped", "entrypoint", h.entrypoint, "port", h.port)
	return nil
}

func (s *Supervisor) forceStop(h *Handle) {
	if h.Exited() {
		return
	}

	if err := terminate(h.cmd); err != nil {
		s.log.Debug("terminate failed, killing", "pid", h.PID(), "error", err)
		_ = kill(h.cmd)
	}

	select {
	case <-h.done:
	case <-time.After(s.stopGrace):
		_ = kill(h.cmd)
		<-h.done
	}
}

var _ usecase.ProcessSupervisor = (*Supervisor)(nil)
