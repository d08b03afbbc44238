// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/go-cil/ilemit/ilstack"
)

// LabelID is a Verifier-local, monotonically-assigned label identifier.
type LabelID uint32

// Label is a named forward/backward jump target: defined once (via
// DefineLabel), marked at most once (via MarkLabel), and may have many
// incoming branches. Grounded on the block/label bookkeeping in
// validate.mockVM's ctrlFrames, generalized from "implicit, one per
// structured block" to "explicit, named, and markable anywhere" per
// spec.md §3/§4.5.
type Label struct {
	id    LabelID
	uid   uuid.UUID // process-wide unique, so two verifiers' labels never compare equal by accident (spec.md domain stack)
	name  string
	owner *Verifier
}

func (l Label) String() string {
	if l.name != "" {
		return l.name
	}
	return fmt.Sprintf("L%d", l.id)
}

// labelState is the verifier's bookkeeping for a defined label: the
// stack shape required at its incoming branches (set by whichever came
// first, a branch or the mark — spec invariant 3) and, once known, the
// instruction index it was marked at.
type labelState struct {
	label         Label
	requiredStack *ilstack.Stack
	markedAt      *int // instruction index, as an int so the zero value isn't confused with ilbuf.Index(0)
}

// DefineLabel allocates a fresh, unmarked Label. Per spec.md §3, a label
// is "defined" — known to the verifier — from the moment it's created.
func (v *Verifier) DefineLabel(name string) Label {
	id := LabelID(len(v.labels))
	l := Label{id: id, uid: uuid.New(), name: name, owner: v}
	v.labels[id] = &labelState{label: l}
	return l
}

// checkLabelOwner returns OwnershipError if l wasn't produced by v.
func (v *Verifier) checkLabelOwner(l Label) error {
	if l.owner != v {
		return v.fail("OwnershipError", OwnershipError{Token: "label " + l.String()})
	}
	return nil
}

// recordIncomingBranch applies spec invariant 3 at a branch site: the
// first branch (or the mark, whichever comes first) fixes the label's
// required stack shape; every subsequent branch or the eventual mark
// must structurally agree with it.
func (v *Verifier) recordIncomingBranch(l Label) error {
	ls := v.labels[l.id]
	if ls.requiredStack == nil {
		snap := v.stack
		ls.requiredStack = &snap
		return nil
	}
	if !ls.requiredStack.Equal(v.stack) {
		return v.fail("LabelError", LabelErrorT{
			Label: l.id,
			Reason: fmt.Sprintf("branch stack disagreement: have %s, required %s", v.stack, *ls.requiredStack),
		})
	}
	return nil
}

// MarkLabel binds l to the current instruction position. Requires l is
// not yet marked; if an incoming branch already recorded a required
// stack shape, the current stack must structurally equal it — otherwise
// the current shape becomes the requirement (spec.md §4.5).
func (v *Verifier) MarkLabel(l Label) error {
	if err := v.checkFinalized(); err != nil {
		return err
	}
	if err := v.checkLabelOwner(l); err != nil {
		return err
	}
	ls, ok := v.labels[l.id]
	if !ok {
		return v.fail("LabelError", LabelErrorT{Label: l.id, Reason: "mark of unknown label"})
	}
	if ls.markedAt != nil {
		return v.fail("LabelError", LabelErrorT{Label: l.id, Reason: "label already marked"})
	}
	if ls.requiredStack == nil {
		snap := v.stack
		ls.requiredStack = &snap
	} else if !ls.requiredStack.Equal(v.stack) {
		return v.fail("LabelError", LabelErrorT{
			Label: l.id,
			Reason: fmt.Sprintf("stack at mark differs from incoming branch: have %s, required %s", v.stack, *ls.requiredStack),
		})
	}

	idx := int(v.buf.CurrentIndex())
	ls.markedAt = &idx
	v.resolvePatches(l.id, idx)
	return nil
}

// resolvePatches rewrites every pending forward-branch operand that
// targeted label id, now that its instruction index is known.
func (v *Verifier) resolvePatches(id LabelID, target int) {
	remaining := v.pendingPatches[:0]
	for _, p := range v.pendingPatches {
		if p.label != id {
			remaining = append(remaining, p)
			continue
		}
		_ = v.buf.PatchInt64At(p.idx, p.byteOffset, int64(target))
	}
	v.pendingPatches = remaining
}
