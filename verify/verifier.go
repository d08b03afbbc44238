// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package verify is the verifier core (spec.md C4) and instruction
// surface (C5): an abstract interpreter over the CIL operand stack and
// control-flow graph. Every mutating method funnels through the single
// UpdateState primitive (spec.md §4.4), which pops, type-checks via
// iltype.Assignable, pushes, and appends to the instruction buffer.
// Grounded on validate.mockVM + the opcode switch in validate.go in the
// teacher, generalized from "replay a function body already serialized
// by a host" to "verify each instruction as the caller emits it."
package verify

import (
	"github.com/google/uuid"

	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/ilstack"
	"github.com/go-cil/ilemit/iltype"
	"github.com/go-cil/ilemit/reflectil"
)

// MethodSignature is the parameter and return types of the method body
// being verified.
type MethodSignature struct {
	Params []reflectil.Type
	Return reflectil.Type // nil for void
}

// pendingPatch is a registered forward-branch backpatch: once label is
// marked, the 8 bytes at byteOffset within the operand of instruction
// idx are overwritten with the label's instruction index.
type pendingPatch struct {
	idx        ilbuf.Index
	byteOffset int
	label      LabelID
}

// branchRecord is an entry of spec.md §3's branches_by_stack: which
// label a branch encountered at a given stack shape was headed to, and
// at what instruction index.
type branchRecord struct {
	label LabelID
	idx   ilbuf.Index
}

// Verifier is the aggregate verifier state of spec.md §3: the current
// abstract stack, label and local tables, the scope-frame stack, and
// pending-patch/branch bookkeeping. A Verifier is single-threaded and
// non-reentrant (spec.md §5): all mutation must happen on the goroutine
// that created it.
type Verifier struct {
	uid uuid.UUID
	sig MethodSignature
	buf *ilbuf.Buffer

	stack ilstack.Stack

	labels map[LabelID]*labelState

	locals []Local
	args   []Local

	scopesByID map[ScopeID]*scopeFrame
	openScopes []ScopeID

	pendingPatches  []pendingPatch
	branchesByStack map[ilstack.Identity]branchRecord

	cache *iltype.Cache

	finalized bool
}

// Option configures a Verifier at construction time.
type Option func(*Verifier)

// WithCache attaches a shared, read-only-after-warmup type-lattice
// cache (spec.md §9, "Global/process state").
func WithCache(c *iltype.Cache) Option {
	return func(v *Verifier) { v.cache = c }
}

// New creates a Verifier for a method with the given signature. One
// Local is created per entry in sig.Params, matching spec.md §3
// ("parameters count as local variables too").
func New(sig MethodSignature, opts ...Option) *Verifier {
	v := &Verifier{
		uid:             uuid.New(),
		sig:             sig,
		buf:             new(ilbuf.Buffer),
		stack:           ilstack.New(),
		labels:          make(map[LabelID]*labelState),
		scopesByID:      make(map[ScopeID]*scopeFrame),
		branchesByStack: make(map[ilstack.Identity]branchRecord),
	}
	for _, o := range opts {
		o(v)
	}
	for i, t := range sig.Params {
		v.args = append(v.args, Local{id: LocalID(i), uid: uuid.New(), declared: t, isArg: true, owner: v})
	}
	return v
}

// fail builds the Error wrapper spec.md §7 requires around every typed
// failure: the instruction index, the current stack snapshot, and the
// underlying cause.
func (v *Verifier) fail(kind string, cause error) *Error {
	logger.Printf("%s at instruction %d: %v", kind, v.buf.CurrentIndex(), cause)
	return &Error{Kind: kind, Err: cause, InstructionIndex: v.buf.CurrentIndex(), Stack: v.stack}
}

func (v *Verifier) checkFinalized() error {
	if v.finalized {
		return v.fail("InvalidOperation", InvalidOperationError{Reason: "mutation after finalize"})
	}
	return nil
}

// lattice canonicalizes a reflectil.Type with iltype.Get, routed through
// the cache if one was configured.
func (v *Verifier) lattice(t reflectil.Type) iltype.StackType {
	if v.cache != nil {
		return v.cache.Get(t)
	}
	return iltype.Get(t)
}

// Stack exposes the current abstract stack, chiefly for diagnostics and
// for the finalizer's return-type compatibility check.
func (v *Verifier) Stack() ilstack.Stack { return v.stack }

// Buffer exposes the underlying instruction log.
func (v *Verifier) Buffer() *ilbuf.Buffer { return v.buf }

// Signature returns the method signature the Verifier was built for.
func (v *Verifier) Signature() MethodSignature { return v.sig }

// Finalized reports whether MarkFinalized has been called.
func (v *Verifier) Finalized() bool { return v.finalized }

// MarkFinalized flips the verifier to read-only. Called by the emitter
// layer (ilemit.Emitter.CreateDelegate) only after it has independently
// confirmed every finalizer precondition in spec.md §4.8 holds.
func (v *Verifier) MarkFinalized() { v.finalized = true }

// UnmarkedLabels returns every defined label that was never marked —
// used by the finalizer (spec.md §4.8, point 1).
func (v *Verifier) UnmarkedLabels() []Label {
	var out []Label
	for _, ls := range v.labels {
		if ls.markedAt == nil {
			out = append(out, ls.label)
		}
	}
	return out
}

// OpenScopeCount returns the number of still-open scope frames (try,
// catch, or finally) — used by the finalizer (spec.md §4.8, point 2).
func (v *Verifier) OpenScopeCount() int { return len(v.openScopes) }

// PendingPatchCount returns the number of forward-branch patches still
// awaiting their target label's mark — used by the finalizer (spec.md
// §4.8, point 3).
func (v *Verifier) PendingPatchCount() int { return len(v.pendingPatches) }

// NumLocals returns the number of locals declared with DeclareLocal, for
// a host runtime sizing its own local-variable storage.
func (v *Verifier) NumLocals() int { return len(v.locals) }

// NumArgs returns the number of parameter slots the method signature
// declared.
func (v *Verifier) NumArgs() int { return len(v.args) }

// updateState is the UpdateState primitive of spec.md §4.4: the single
// choke-point every opcode handler funnels through.
//
//  1. peek the top len(pops) values; underflow if too few.
//  2. for each (expected, actual) pair — pops is given top-to-bottom, so
//     pops[i] is compared directly against the i-th value from the top
//     — check iltype.Assignable; mismatch fails with the opcode name and
//     position.
//  3. pop them off and push the given results.
//  4. append the instruction to the buffer.
func (v *Verifier) updateState(op Opcode, operand []byte, pops, pushes []iltype.StackType) (ilbuf.Index, error) {
	logger.Printf("%s: stack depth %d, pop %d, push %d", op, v.stack.Len(), len(pops), len(pushes))
	if err := v.checkFinalized(); err != nil {
		return 0, err
	}

	top, ok := v.stack.TopN(len(pops))
	if !ok {
		return 0, v.fail("StackUnderflow", StackUnderflowError{Required: len(pops), Have: v.stack.Len()})
	}
	for i, expected := range pops {
		actual := top[i]
		if !iltype.Assignable(actual, expected) {
			return 0, v.fail("TypeMismatch", TypeMismatchError{Position: i, Expected: expected, Got: actual, Opcode: op.String()})
		}
	}

	rest, _, _ := v.stack.PopN(len(pops))
	for _, t := range pushes {
		rest = rest.Push(t)
	}
	v.stack = rest

	idx := v.buf.Append(byte(op), operand)
	return idx, nil
}
