//go:build windows

package sqlite

import "golang.org/x/sys/windows"

// lockSidecarFile acquires the exclusive lock on the sidecar ".lock"
// file using LockFileEx, blocking until available to match the Unix
// flock semantics used by lockSidecarFile on other platforms.
func lockSidecarFile(fd uintptr) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(fd), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, &ol)
}

func unlockSidecarFile(fd uintptr) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(fd), 0, 1, 0, &ol)
}
