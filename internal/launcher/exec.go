package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"omnibus/pkg/logging"
)

// ExecStarter spawns services as detached process groups sharing the
// orchestrator's stdin, stdout and stderr.
type ExecStarter struct{}

// NewExecStarter creates a starter for real processes.
func NewExecStarter() *ExecStarter {
	return &ExecStarter{}
}

// Start implements Starter. The process is reaped in the background; its exit is
// logged but not acted upon.
func (s *ExecStarter) Start(spec ProcessSpec) (Handle, error) {
	cmd := newCommand(spec)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s (%s %v): %w", spec.Name, spec.Command, spec.Args, err)
	}

	h := &processHandle{name: spec.Name, pid: cmd.Process.Pid}
	go func() {
		err := cmd.Wait()
		if err != nil {
			logging.Warn("Launcher", "%s (PID: %d) exited: %v", h.name, h.pid, err)
			return
		}
		logging.Info("Launcher", "%s (PID: %d) exited", h.name, h.pid)
	}()
	return h, nil
}

func newCommand(spec ProcessSpec) *exec.Cmd {
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = spec.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

type processHandle struct {
	name string
	pid  int
}

func (h *processHandle) Name() string { return h.name }

func (h *processHandle) PID() int { return h.pid }

func (h *processHandle) Signal(sig syscall.Signal) error {
	if err := syscall.Kill(-h.pid, sig); err != nil {
		return fmt.Errorf("failed to signal %s (PID: %d): %w", h.name, h.pid, err)
	}
	return nil
}
