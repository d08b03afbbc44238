// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/iltype"
)

// emitBranch is the shared machinery behind every branch-family
// instruction: it funnels through updateState with an 8-byte zero
// operand placeholder, then either patches that placeholder immediately
// (the target is a backward label, already marked) or registers a
// pendingPatch for label.MarkLabel to resolve later (spec.md §4.3/§4.5).
func (v *Verifier) emitBranch(op Opcode, l Label, pops []iltype.StackType) (ilbuf.Index, error) {
	if err := v.checkLabelOwner(l); err != nil {
		return 0, err
	}
	idx, err := v.updateState(op, make([]byte, 8), pops, nil)
	if err != nil {
		return 0, err
	}
	if err := v.recordIncomingBranch(l); err != nil {
		return 0, err
	}
	ls := v.labels[l.id]
	if ls.markedAt != nil {
		if err := v.buf.PatchInt64(idx, int64(*ls.markedAt)); err != nil {
			return 0, v.fail("InvalidOperation", InvalidOperationError{Reason: err.Error()})
		}
	} else {
		v.pendingPatches = append(v.pendingPatches, pendingPatch{idx: idx, byteOffset: 0, label: l.id})
	}
	return idx, nil
}

// Branch emits an unconditional jump to l.
func (v *Verifier) Branch(l Label) (ilbuf.Index, error) {
	return v.emitBranch(OpBr, l, nil)
}

func (v *Verifier) checkBranchable(top iltype.StackType, op Opcode) error {
	switch top.Kind {
	case iltype.Int32, iltype.Int64, iltype.NativeInt, iltype.Reference, iltype.NullLiteral:
		return nil
	default:
		return v.fail("TypeMismatch", TypeMismatchError{Position: 0, Expected: top, Got: top, Opcode: op.String()})
	}
}

// BranchIfTrue pops an Int32/Int64/NativeInt/Reference (or null) value and jumps to l if
// it is non-zero/non-null.
func (v *Verifier) BranchIfTrue(l Label) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if err := v.checkBranchable(top, OpBrtrue); err != nil {
		return 0, err
	}
	return v.emitBranch(OpBrtrue, l, []iltype.StackType{top})
}

// BranchIfFalse pops a value and jumps to l if it is zero/null.
func (v *Verifier) BranchIfFalse(l Label) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if err := v.checkBranchable(top, OpBrfalse); err != nil {
		return 0, err
	}
	return v.emitBranch(OpBrfalse, l, []iltype.StackType{top})
}

// BranchIfEqual pops two values of the same kind and jumps to l if they
// compare equal.
func (v *Verifier) BranchIfEqual(l Label) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	return v.emitBranch(OpBeq, l, []iltype.StackType{top, top})
}

// BranchIfNotEqual pops two values of the same kind and jumps to l if
// they differ.
func (v *Verifier) BranchIfNotEqual(l Label) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	return v.emitBranch(OpBne, l, []iltype.StackType{top, top})
}

// Switch pops an Int32 selector and jumps to targets[selector], falling
// through if the selector is out of range. Every target is registered
// exactly as a Branch would be.
func (v *Verifier) Switch(targets []Label) (ilbuf.Index, error) {
	if len(targets) == 0 {
		return 0, v.fail("InvalidOperation", InvalidOperationError{Reason: "switch requires at least one target"})
	}
	if err := v.checkFinalized(); err != nil {
		return 0, err
	}
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if !iltype.Assignable(top, iltype.TypeInt32) {
		return 0, v.fail("TypeMismatch", TypeMismatchError{Position: 0, Expected: iltype.TypeInt32, Got: top, Opcode: OpSwitch.String()})
	}

	operand := make([]byte, 8*len(targets))
	idx, err := v.updateState(OpSwitch, operand, []iltype.StackType{top}, nil)
	if err != nil {
		return 0, err
	}
	for i, l := range targets {
		if err := v.checkLabelOwner(l); err != nil {
			return idx, err
		}
		if err := v.recordIncomingBranch(l); err != nil {
			return idx, err
		}
		ls := v.labels[l.id]
		off := i * 8
		if ls.markedAt != nil {
			if err := v.buf.PatchInt64At(idx, off, int64(*ls.markedAt)); err != nil {
				return idx, v.fail("InvalidOperation", InvalidOperationError{Reason: err.Error()})
			}
		} else {
			v.pendingPatches = append(v.pendingPatches, pendingPatch{idx: idx, byteOffset: off, label: l.id})
		}
	}
	return idx, nil
}

// emitLeave emits a leave to target, used to exit a catch or finally
// block toward its owning try's end label. Besides the ordinary
// branch bookkeeping, it records the exiting stack shape in
// branchesByStack — preserved from the source library per spec.md §9
// even though no instruction surface method currently reads it back.
func (v *Verifier) emitLeave(target Label) error {
	idx, err := v.emitBranch(OpLeave, target, nil)
	if err != nil {
		return err
	}
	v.branchesByStack[v.stack.Unique()] = branchRecord{label: target.id, idx: idx}
	return nil
}
