//go:build !windows

package stopcond

import "golang.org/x/sys/unix"

// processAlive checks existence with kill(pid, 0). EPERM means the process
// exists but belongs to another user.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
