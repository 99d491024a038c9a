//go:build !windows

package crypto

import "golang.org/x/sys/unix"

// lockPages pins buf in RAM so key bytes are not swapped to disk.
func lockPages(buf []byte) bool {
	return len(buf) > 0 && unix.Mlock(buf) == nil
}

func unlockPages(buf []byte) {
	if len(buf) > 0 {
		_ = unix.Munlock(buf)
	}
}
