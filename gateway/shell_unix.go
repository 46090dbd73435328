//go:build unix

package gateway

import (
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/util/errwrap"
)

// Shell runs a command through the host's shell in its own process group,
// with a bounded timeout. On timeout the whole process group is signaled
// rather than just the immediate child, so a command that spawns its own
// children (a pipeline, a backgrounded subprocess) doesn't outlive it.
// Grounded on _examples/purpleidea-mgmt/engine/resources/exec.go's
// process-group handling for long-running commands.
type Shell struct {
	// Timeout bounds how long a command may run; zero means no bound.
	Timeout time.Duration
}

func (s *Shell) Run(cmd string) (int, error) {
	c := exec.Command("/bin/sh", "-c", cmd)
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := c.Start(); err != nil {
		return -1, fmt.Errorf("shell-cmd: %q: %w", cmd, err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	var timeout <-chan time.Time
	if s.Timeout > 0 {
		timer := time.NewTimer(s.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		if err == nil {
			return 0, nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), fmt.Errorf("shell-cmd: %q exited %d", cmd, exitErr.ExitCode())
		}
		return -1, fmt.Errorf("shell-cmd: %q: %w", cmd, err)
	case <-timeout:
		killErr := unix.Kill(-c.Process.Pid, unix.SIGKILL)
		<-done
		return -1, errwrap.Timeout(context.DeadlineExceeded, killErr)
	}
}

var _ engine.ShellExecutor = (*Shell)(nil)
