// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ilbuf is the append-only instruction log the verifier writes
// to: each call to Append records an opcode and its operand bytes and
// returns a monotonic Index, and Patch rewrites the operand bytes of a
// previously-appended instruction once a forward branch's target is
// known. Grounded on exec/internal/compile.Compile's bytes.Buffer +
// patchOffset pattern in the teacher, generalized from "rewrite a whole
// already-linear byte stream" to "patch one instruction's operand
// in-place, by index" to match spec.md §4.3.
package ilbuf

import (
	"encoding/binary"
	"fmt"
)

// Index identifies an instruction's position in a Buffer. Indices are
// assigned in append order starting at 0 and are never reused.
type Index int

// entry is one logged instruction: the opcode byte plus its operand
// bytes (already encoded — the instruction surface is responsible for
// encoding, ilbuf just stores and patches).
type entry struct {
	opcode  byte
	operand []byte
}

// Buffer is the append-only instruction log. The zero value is ready to
// use.
type Buffer struct {
	entries []entry
}

// Append records opcode with the given operand bytes and returns the
// Index assigned to it.
func (b *Buffer) Append(opcode byte, operand []byte) Index {
	idx := Index(len(b.entries))
	logger.Printf("append %d: opcode %d, %d operand byte(s)", idx, opcode, len(operand))
	b.entries = append(b.entries, entry{opcode: opcode, operand: append([]byte(nil), operand...)})
	return idx
}

// AppendPlaceholder appends opcode with an operand of n zero bytes,
// returning the Index for a later Patch — the mechanism forward
// branches use: write a placeholder now, patch it once the label marks.
func (b *Buffer) AppendPlaceholder(opcode byte, n int) Index {
	return b.Append(opcode, make([]byte, n))
}

// CurrentIndex returns the Index the next Append call will assign.
func (b *Buffer) CurrentIndex() Index { return Index(len(b.entries)) }

// Patch overwrites the operand bytes of the instruction at idx. The
// replacement must be exactly as long as the operand it replaces —
// patching never changes an instruction's length, since offsets of
// every later instruction would otherwise shift.
func (b *Buffer) Patch(idx Index, operand []byte) error {
	if int(idx) < 0 || int(idx) >= len(b.entries) {
		return fmt.Errorf("ilbuf: patch index %d out of range [0, %d)", idx, len(b.entries))
	}
	e := &b.entries[idx]
	if len(operand) != len(e.operand) {
		return fmt.Errorf("ilbuf: patch at %d changes operand length (%d -> %d)", idx, len(e.operand), len(operand))
	}
	logger.Printf("patch %d: %d operand byte(s)", idx, len(operand))
	copy(e.operand, operand)
	return nil
}

// PatchInt64 patches idx's operand with the little-endian encoding of
// v — the common case for backpatching a branch target offset.
func (b *Buffer) PatchInt64(idx Index, v int64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return b.Patch(idx, buf)
}

// PatchInt64At patches the 8 bytes at byteOffset within idx's operand
// with the little-endian encoding of v, leaving the rest of the operand
// untouched. Used for instructions whose operand packs more than one
// patchable target, such as a branch table's entries.
func (b *Buffer) PatchInt64At(idx Index, byteOffset int, v int64) error {
	if int(idx) < 0 || int(idx) >= len(b.entries) {
		return fmt.Errorf("ilbuf: patch index %d out of range [0, %d)", idx, len(b.entries))
	}
	e := &b.entries[idx]
	if byteOffset < 0 || byteOffset+8 > len(e.operand) {
		return fmt.Errorf("ilbuf: patch offset %d+8 out of range for operand of length %d at %d", byteOffset, len(e.operand), idx)
	}
	binary.LittleEndian.PutUint64(e.operand[byteOffset:byteOffset+8], uint64(v))
	return nil
}

// Len reports the number of instructions appended so far.
func (b *Buffer) Len() int { return len(b.entries) }

// Bytes serializes the buffer into the flat byte stream a host emitter
// consumes: each instruction as its opcode byte followed by its operand
// bytes, in append order. Offset computation (for opcodes whose operand
// is itself an offset into this stream) is the instruction surface's
// job, not ilbuf's — ilbuf only stores what it's told.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, 0, len(b.entries)*2)
	for _, e := range b.entries {
		out = append(out, e.opcode)
		out = append(out, e.operand...)
	}
	return out
}

// Opcode returns the opcode recorded at idx, for diagnostics.
func (b *Buffer) Opcode(idx Index) (byte, bool) {
	if int(idx) < 0 || int(idx) >= len(b.entries) {
		return 0, false
	}
	return b.entries[idx].opcode, true
}

// At returns the opcode and operand bytes recorded at idx. A host
// runtime that wants to interpret instructions directly (rather than
// re-parsing the flattened Bytes stream, where opcodes like switch have
// operand lengths Bytes can't recover on its own) walks the buffer with
// At(0), At(1), ... up to Len().
func (b *Buffer) At(idx Index) (opcode byte, operand []byte, ok bool) {
	if int(idx) < 0 || int(idx) >= len(b.entries) {
		return 0, nil, false
	}
	e := b.entries[idx]
	return e.opcode, e.operand, true
}
