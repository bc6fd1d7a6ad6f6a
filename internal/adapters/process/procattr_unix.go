//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// isolate puts the child in its own process group so that signals reach
// every process the runner spawns (npx -> tsx -> node).
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminate(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGTERM)
}

func kill(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGKILL)
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, sig); err != nil {
		// Fall back to the leader alone if the group is already gone.
		return cmd.Process.Signal(sig)
	}
	return nil
}
