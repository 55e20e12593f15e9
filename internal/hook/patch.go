// Copyright (C) 2022 K2 Cyber Security Inc.

package hook

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

const (
	// bytes decoded from the target when looking for a patch site
	maxPrologue = 32
	// MOV reg, imm64; JMP reg
	jumpLen = 13
	nop     = 0x90
)

type info struct {
	length      int
	relocatable bool
}

// scratch is a register clobbered by the jump back to the target.
type scratch int

const (
	scratchR11 scratch = iota
	scratchRAX
)

// ensureLength decodes whole instructions until at least size bytes are covered.
func ensureLength(src []byte, size int) (info, error) {
	var inf info
	inf.relocatable = true
	for inf.length < size {
		i, err := analysis(src)
		if err != nil {
			return inf, err
		}
		if i.ends && inf.length+i.length < size {
			return inf, ErrTooShort
		}
		inf.relocatable = inf.relocatable && i.relocatable
		inf.length += i.length
		src = src[i.length:]
	}
	return inf, nil
}

type instInfo struct {
	info
	// control never falls through to the next instruction
	ends bool
}

func analysis(src []byte) (inf instInfo, err error) {
	inst, err := x86asm.Decode(src, 64)
	if err != nil {
		return inf, fmt.Errorf("decode: %w", err)
	}
	inf.length = inst.Len
	inf.relocatable = true
	switch inst.Op {
	case x86asm.RET, x86asm.JMP, x86asm.INT, x86asm.UD2:
		inf.ends = true
	}
	for _, a := range inst.Args {
		if a == nil {
			break
		}
		if mem, ok := a.(x86asm.Mem); ok {
			if mem.Base == x86asm.RIP {
				inf.relocatable = false
				return
			}
		} else if _, ok := a.(x86asm.Rel); ok {
			inf.relocatable = false
			return
		}
	}
	return
}

// ops writing RAX without naming it
var implicitRAX = map[x86asm.Op]bool{
	x86asm.MUL: true, x86asm.DIV: true, x86asm.IDIV: true,
	x86asm.CPUID: true, x86asm.CDQE: true, x86asm.CWDE: true,
	x86asm.RDTSC: true, x86asm.CQO: true, x86asm.CDQ: true,
}

func isRAX(r x86asm.Reg) bool {
	switch r {
	case x86asm.RAX, x86asm.EAX, x86asm.AX, x86asm.AH, x86asm.AL:
		return true
	}
	return false
}

func isR11(r x86asm.Reg) bool {
	switch r {
	case x86asm.R11, x86asm.R11L, x86asm.R11W, x86asm.R11B:
		return true
	}
	return false
}

// scratchRegister picks a register the stolen instructions leave dead, so
// the trampoline can clobber it on the way back.
func scratchRegister(stolen []byte) (scratch, error) {
	okA, okB := true, true
	for x := 0; x < len(stolen); {
		i, err := x86asm.Decode(stolen[x:], 64)
		if err != nil {
			return 0, fmt.Errorf("decode: %w", err)
		}
		x += i.Len
		if implicitRAX[i.Op] {
			okA = false
		}
		if i.Op == x86asm.CMP || i.Op == x86asm.TEST {
			continue
		}
		written := []x86asm.Arg{i.Args[0]}
		if i.Op == x86asm.XCHG {
			written = append(written, i.Args[1])
		}
		for _, a := range written {
			r, ok := a.(x86asm.Reg)
			if !ok {
				continue
			}
			if isRAX(r) {
				okA = false
			}
			if isR11(r) {
				okB = false
			}
		}
	}
	switch {
	case okB:
		return scratchR11, nil
	case okA:
		return scratchRAX, nil
	}
	return 0, ErrNoScratch
}

func absJump(addr uintptr, reg scratch) []byte {
	if reg == scratchRAX {
		return []byte{
			0x48, 0xb8, // MOV RAX, addr
			byte(addr), byte(addr >> 8), // .
			byte(addr >> 16), byte(addr >> 24), // .
			byte(addr >> 32), byte(addr >> 40), // .
			byte(addr >> 48), byte(addr >> 56), // .
			0xff, 0xe0, // JMP RAX
			nop,
		}
	}
	return []byte{
		0x49, 0xbb, // MOV R11, addr
		byte(addr), byte(addr >> 8), // .
		byte(addr >> 16), byte(addr >> 24), // .
		byte(addr >> 32), byte(addr >> 40), // .
		byte(addr >> 48), byte(addr >> 56), // .
		0x41, 0xff, 0xe3, // JMP R11
	}
}

// buildPatch jumps to the detour through R11, volatile and unused at entry,
// padded to the length of the stolen instructions.
func buildPatch(to uintptr, length int) []byte {
	seq := absJump(to, scratchR11)
	for len(seq) < length {
		seq = append(seq, nop)
	}
	return seq
}

func buildTrampoline(stolen []byte, resume uintptr, reg scratch) []byte {
	seq := make([]byte, 0, len(stolen)+jumpLen)
	seq = append(seq, stolen...)
	return append(seq, absJump(resume, reg)...)
}

func hex(addr uintptr) string {
	return fmt.Sprintf("0x%X", addr)
}
