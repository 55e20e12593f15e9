package sigscan

import (
	"golang.org/x/sys/windows"
)

func mainModule() (uintptr, error) {
	var h windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &h); err != nil {
		return 0, err
	}
	return uintptr(h), nil
}
