package procattr

import (
	"os"
	"syscall"
)

// SignalGroup delivers sig to the whole process group of p. The negative
// PID form addresses the group rather than the single process, so
// anything the agent forked is covered too.
func SignalGroup(p *os.Process, sig syscall.Signal) error {
	if p == nil {
		return nil
	}
	return syscall.Kill(-p.Pid, sig)
}

// KillGroup delivers SIGKILL to the whole process group of p.
func KillGroup(p *os.Process) error {
	return SignalGroup(p, syscall.SIGKILL)
}
