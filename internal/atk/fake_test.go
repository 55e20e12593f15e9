package atk

import (
	"github.com/fengyoulin/ctxmenu/internal/native"
	"github.com/fengyoulin/ctxmenu/internal/native/nativetest"
)

// arenaPrimitives mimics the host routines inside an arena.
type arenaPrimitives struct {
	arena *nativetest.Arena
}

func (p arenaPrimitives) ChangeType(slot uintptr, t ValueType) error {
	return native.WriteU32(p.arena, slot+typeOffset, uint32(t))
}

func (p arenaPrimitives) SetString(slot uintptr, s string) error {
	return native.WritePointer(p.arena, slot+payloadOffset, p.arena.AllocString(s))
}
