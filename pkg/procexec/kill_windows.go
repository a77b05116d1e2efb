//go:build windows

package procexec

import (
	"os"
	"os/exec"
	"strconv"
)

// setProcessGroup is a no-op on Windows; taskkill /T handles the tree.
func setProcessGroup(cmd *exec.Cmd) {}

// KillProcessTree force-kills a process and its children. proc.Kill() only
// terminates the parent on Windows — child processes survive — so taskkill
// with /T (tree) and /F (force) is used instead.
func KillProcessTree(proc *os.Process) {
	if proc == nil {
		return
	}
	err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(proc.Pid)).Run()
	if err != nil {
		_ = proc.Kill()
	}
}
