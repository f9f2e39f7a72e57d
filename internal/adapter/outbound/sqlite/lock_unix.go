//go:build !windows

package sqlite

import "syscall"

// lockSidecarFile acquires the exclusive advisory lock on the sidecar
// ".lock" file that coordinates writers across processes sharing a
// database file.
func lockSidecarFile(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX)
}

func unlockSidecarFile(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
