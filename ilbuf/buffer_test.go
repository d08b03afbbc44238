// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilbuf

import (
	"encoding/binary"
	"testing"
)

func TestAppendAndBytes(t *testing.T) {
	var b Buffer
	i0 := b.Append(0x01, nil)
	i1 := b.Append(0x02, []byte{0xAA})
	if i0 != 0 || i1 != 1 {
		t.Fatalf("unexpected indices %d, %d", i0, i1)
	}
	if got, want := b.Bytes(), []byte{0x01, 0x02, 0xAA}; string(got) != string(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
}

func TestPatchForwardBranch(t *testing.T) {
	var b Buffer
	b.Append(0x01, nil) // some earlier instruction
	branch := b.AppendPlaceholder(0x0c, 8)
	b.Append(0x02, nil) // the branch's eventual target

	target := int64(b.CurrentIndex())
	if err := b.PatchInt64(branch, target); err != nil {
		t.Fatal(err)
	}

	bytes := b.Bytes()
	// opcode(1) + opcode(1) + operand(8) + opcode(1) = 11
	if len(bytes) != 11 {
		t.Fatalf("unexpected length %d", len(bytes))
	}
	got := int64(binary.LittleEndian.Uint64(bytes[2:10]))
	if got != target {
		t.Fatalf("patched operand = %d, want %d", got, target)
	}
}

func TestPatchWrongLengthRejected(t *testing.T) {
	var b Buffer
	idx := b.Append(0x01, []byte{0x00})
	if err := b.Patch(idx, []byte{0x00, 0x00}); err == nil {
		t.Fatal("expected an error when patch operand length changes")
	}
}

func TestPatchOutOfRange(t *testing.T) {
	var b Buffer
	b.Append(0x01, nil)
	if err := b.Patch(5, nil); err == nil {
		t.Fatal("expected an error for an out-of-range index")
	}
}

func TestPatchInt64AtSubOffset(t *testing.T) {
	var b Buffer
	sw := b.AppendPlaceholder(0x0e, 16) // two branch-table slots
	if err := b.PatchInt64At(sw, 0, 7); err != nil {
		t.Fatal(err)
	}
	if err := b.PatchInt64At(sw, 8, 9); err != nil {
		t.Fatal(err)
	}
	bytes := b.Bytes()
	got0 := int64(binary.LittleEndian.Uint64(bytes[1:9]))
	got1 := int64(binary.LittleEndian.Uint64(bytes[9:17]))
	if got0 != 7 || got1 != 9 {
		t.Fatalf("patched slots = %d, %d, want 7, 9", got0, got1)
	}
	if err := b.PatchInt64At(sw, 9, 1); err == nil {
		t.Fatal("expected an error for a misaligned/out-of-range offset")
	}
}
