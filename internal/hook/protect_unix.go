//go:build !windows

// Copyright (C) 2022 K2 Cyber Security Inc.

package hook

import (
	"golang.org/x/sys/unix"
)

var pageSize = uintptr(unix.Getpagesize())

// mprotect applies prot to every page touched by [addr, addr+size).
func mprotect(addr, size uintptr, prot int) error {
	start := addr &^ (pageSize - 1)
	end := (addr + size + pageSize - 1) &^ (pageSize - 1)
	for page := start; page < end; page += pageSize {
		if err := unix.Mprotect(makeSlice(page, pageSize), prot); err != nil {
			return err
		}
	}
	return nil
}

func protectPages(addr, size uintptr) error {
	return mprotect(addr, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC)
}

func reProtectPages(addr, size uintptr) error {
	return mprotect(addr, size, unix.PROT_READ|unix.PROT_EXEC)
}

// allocExec maps an anonymous RWX region for a trampoline.
func allocExec(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANON)
}

func freeExec(b []byte) error {
	return unix.Munmap(b)
}
