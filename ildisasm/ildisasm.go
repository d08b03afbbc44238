// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ildisasm renders a finalized ilbuf.Buffer as human-readable
// text, one instruction per line. Grounded on disasm.Disassemble's
// "walk the instruction stream and decode each opcode's immediates"
// shape in the teacher, simplified because ilbuf already stores one
// structured entry per instruction (disasm has to re-derive instruction
// boundaries and block nesting from a flat WASM byte stream; ildisasm
// never does, since verify/ops.go already wrote one entry per emitted
// instruction).
package ildisasm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/verify"
)

// fourByteOperand is the set of opcodes ildisasm knows how to decode as
// a little-endian int32: local/arg slot ids and the int32 constant
// load. Arithmetic, dup, ret, and the field, call and newobj families
// carry no operand bytes (the reflectil value they reference is never
// serialized), so they render with no immediate; an operand no map
// below covers (a switch's target table) is rendered as a hex dump.
var fourByteOperand = map[verify.Opcode]bool{
	verify.OpLdcI4: true,
	verify.OpLdloc: true, verify.OpStloc: true, verify.OpLdloca: true,
	verify.OpLdarg: true, verify.OpStarg: true, verify.OpLdarga: true,
}

// eightByteInt is the set of opcodes whose operand is a little-endian
// int64: the int64 constant load and every branch family opcode, whose
// operand is always an 8-byte instruction-index target
// (verify/branch.go's emitBranch always allocates an 8-byte placeholder,
// matching ilbuf.Buffer.PatchInt64's width).
var eightByteInt = map[verify.Opcode]bool{
	verify.OpLdcI8: true,
	verify.OpBr: true, verify.OpBrtrue: true, verify.OpBrfalse: true,
	verify.OpBeq: true, verify.OpBne: true, verify.OpLeave: true,
}
var eightByteFloat = map[verify.Opcode]bool{verify.OpLdcR8: true}
var fourByteFloat = map[verify.Opcode]bool{verify.OpLdcR4: true}

// Line renders one instruction at idx as "<index> <mnemonic> <operand>".
func Line(buf *ilbuf.Buffer, idx ilbuf.Index) (string, bool) {
	opcode, operand, ok := buf.At(idx)
	if !ok {
		return "", false
	}
	op := verify.Opcode(opcode)

	var b strings.Builder
	fmt.Fprintf(&b, "%04d  %-12s", int(idx), op.String())

	switch {
	case len(operand) == 0:
		// no immediate
	case fourByteOperand[op]:
		fmt.Fprintf(&b, "%d", int32(binary.LittleEndian.Uint32(operand)))
	case fourByteFloat[op]:
		fmt.Fprintf(&b, "%g", math.Float32frombits(binary.LittleEndian.Uint32(operand)))
	case eightByteInt[op]:
		fmt.Fprintf(&b, "%d", int64(binary.LittleEndian.Uint64(operand)))
	case eightByteFloat[op]:
		fmt.Fprintf(&b, "%g", math.Float64frombits(binary.LittleEndian.Uint64(operand)))
	default:
		fmt.Fprintf(&b, "% x", operand)
	}
	return b.String(), true
}

// Disassemble renders every instruction in buf, in order.
func Disassemble(buf *ilbuf.Buffer) []string {
	var lines []string
	for i := ilbuf.Index(0); ; i++ {
		line, ok := Line(buf, i)
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	return lines
}
