package hook

import (
	"golang.org/x/sys/windows"
)

func reProtectPages(addr, size uintptr) error {
	var old uint32
	return windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READ, &old)
}

func protectPages(addr, size uintptr) error {
	var old uint32
	return windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READWRITE, &old)
}

func allocExec(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return nil, err
	}
	return makeSlice(addr, uintptr(size)), nil
}

func freeExec(b []byte) error {
	return windows.VirtualFree(slicePtr(b), 0, windows.MEM_RELEASE)
}
