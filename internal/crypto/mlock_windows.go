//go:build windows

package crypto

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// lockPages pins buf in the working set so key bytes are not paged out.
func lockPages(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	return windows.VirtualLock(pageAddr(buf), uintptr(len(buf))) == nil
}

func unlockPages(buf []byte) {
	if len(buf) > 0 {
		_ = windows.VirtualUnlock(pageAddr(buf), uintptr(len(buf)))
	}
}

func pageAddr(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
}
