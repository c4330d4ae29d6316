//go:build linux

// Package procattr configures spawned CLI processes so they cannot
// outlive the SDK process that owns them.
package procattr

import (
	"os/exec"
	"syscall"
)

// Set places the child in its own process group and arranges for it to
// receive SIGTERM if the parent dies first (Pdeathsig). The process
// group lets teardown signal the whole tree, including anything the CLI
// itself forks.
func Set(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
