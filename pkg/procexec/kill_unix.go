//go:build !windows

package procexec

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so the timeout
// kill can target the whole group, not just the immediate child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillProcessTree force-kills a process and its children. SIGKILL to the
// negative PID targets the process group; children reparented to PID 1
// would otherwise keep running after the parent dies.
func KillProcessTree(proc *os.Process) {
	if proc == nil {
		return
	}
	if err := syscall.Kill(-proc.Pid, syscall.SIGKILL); err != nil {
		// Fallback: kill just the parent process
		_ = proc.Kill()
	}
}
