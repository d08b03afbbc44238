// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import "fmt"

// Opcode identifies a CIL instruction family. Unlike the teacher's WASM
// opcode set (a fixed byte read off an already-serialized stream), these
// are assigned by the emitter itself as instructions are appended, since
// this verifier builds the stream rather than parsing one.
type Opcode byte

const (
	OpNop Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpCeq
	OpCgt
	OpClt
	OpConvI4
	OpConvI8
	OpConvR4
	OpConvR8
	OpConvU
	OpDup
	OpPop
	OpLdcI4
	OpLdcI8
	OpLdcR4
	OpLdcR8
	OpLdnull
	OpLdloc
	OpStloc
	OpLdloca
	OpLdarg
	OpStarg
	OpLdarga
	OpLdfld
	OpStfld
	OpLdflda
	OpLdsfld
	OpStsfld
	OpCall
	OpCallvirt
	OpCallindirect
	OpNewobj
	OpNewarr
	OpBr
	OpBrtrue
	OpBrfalse
	OpBeq
	OpBne
	OpSwitch
	OpLeave
	OpBeginTry
	OpBeginCatch
	OpEndCatch
	OpBeginFinally
	OpEndFinally
	OpEndTry
	OpRet
)

var opcodeNames = map[Opcode]string{
	OpNop: "nop", OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div",
	OpRem: "rem", OpNeg: "neg", OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpShl: "shl", OpShr: "shr", OpCeq: "ceq", OpCgt: "cgt", OpClt: "clt",
	OpConvI4: "conv.i4", OpConvI8: "conv.i8", OpConvR4: "conv.r4", OpConvR8: "conv.r8",
	OpConvU: "conv.u", OpDup: "dup", OpPop: "pop",
	OpLdcI4: "ldc.i4", OpLdcI8: "ldc.i8", OpLdcR4: "ldc.r4", OpLdcR8: "ldc.r8",
	OpLdnull: "ldnull",
	OpLdloc:  "ldloc", OpStloc: "stloc", OpLdloca: "ldloca",
	OpLdarg: "ldarg", OpStarg: "starg", OpLdarga: "ldarga",
	OpLdfld: "ldfld", OpStfld: "stfld", OpLdflda: "ldflda",
	OpLdsfld: "ldsfld", OpStsfld: "stsfld",
	OpCall: "call", OpCallvirt: "callvirt", OpCallindirect: "calli",
	OpNewobj: "newobj", OpNewarr: "newarr",
	OpBr: "br", OpBrtrue: "brtrue", OpBrfalse: "brfalse", OpBeq: "beq", OpBne: "bne",
	OpSwitch: "switch", OpLeave: "leave",
	OpBeginTry: "begin_try", OpBeginCatch: "begin_catch", OpEndCatch: "end_catch",
	OpBeginFinally: "begin_finally", OpEndFinally: "end_finally", OpEndTry: "end_try",
	OpRet: "ret",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("<unknown opcode %d>", byte(op))
}
