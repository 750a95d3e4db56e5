//go:build windows

package security

import (
	"syscall"
	"unsafe"
)

// processMemoryCounters mirrors the fixed-size prefix of Win32's
// PROCESS_MEMORY_COUNTERS that GetProcessMemoryInfo fills in.
type processMemoryCounters struct {
	cb                         uint32
	pageFaultCount             uint32
	peakWorkingSetSize         uintptr
	workingSetSize             uintptr
	quotaPeakPagedPoolUsage    uintptr
	quotaPagedPoolUsage        uintptr
	quotaPeakNonPagedPoolUsage uintptr
	quotaNonPagedPoolUsage     uintptr
	pagefileUsage              uintptr
	peakPagefileUsage          uintptr
}

var (
	psapi                     = syscall.NewLazyDLL("psapi.dll")
	procGetProcessMemoryInfo  = psapi.NewProc("GetProcessMemoryInfo")
	procGetCurrentProcess     = syscall.NewLazyDLL("kernel32.dll").NewProc("GetCurrentProcess")
)

func probeMemoryUsage(_ string) (int64, bool) {
	handle, _, _ := procGetCurrentProcess.Call()

	var counters processMemoryCounters
	counters.cb = uint32(unsafe.Sizeof(counters))

	ret, _, _ := procGetProcessMemoryInfo.Call(
		handle,
		uintptr(unsafe.Pointer(&counters)),
		uintptr(counters.cb),
	)
	if ret == 0 {
		return 0, false
	}
	return int64(counters.workingSetSize), true
}
