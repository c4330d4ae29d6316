//go:build !linux

// Package procattr configures spawned CLI processes so they cannot
// outlive the SDK process that owns them.
package procattr

import (
	"os/exec"
	"syscall"
)

// Set places the child in its own process group. Pdeathsig is not
// available outside Linux; the process group still lets teardown signal
// the whole tree with kill(-pgid).
func Set(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
