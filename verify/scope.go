// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/iltype"
	"github.com/go-cil/ilemit/reflectil"
)

// ScopeID identifies a scope frame within a Verifier instance.
type ScopeID uint32

type scopeKind uint8

const (
	scopeTry scopeKind = iota
	scopeCatch
	scopeFinally
)

// scopeFrame is the tagged-union Try/Catch/Finally frame of spec.md §3.
// Frames live in an arena (Verifier.scopesByID) indexed by ScopeID;
// parent/child relationships are id references, not owning pointers, so
// closure order isn't constrained by memory-ownership rules (spec.md §9,
// "Cyclic ownership").
type scopeFrame struct {
	kind   scopeKind
	id     ScopeID
	parent ScopeID // for Catch/Finally: the owning Try's id

	endLabel Label // Try only: the label EndCatchBlock's leave targets; the caller marks it after EndExceptionBlock
	caught   reflectil.Type // Catch only

	hasCatchOrFinally bool // Try only
	finallyDefined    bool // Try only

	openedAt ilbuf.Index
	closedAt *ilbuf.Index
}

func (v *Verifier) topScope() (*scopeFrame, bool) {
	if len(v.openScopes) == 0 {
		return nil, false
	}
	return v.scopesByID[v.openScopes[len(v.openScopes)-1]], true
}

func (v *Verifier) pushScope(f *scopeFrame) {
	v.scopesByID[f.id] = f
	v.openScopes = append(v.openScopes, f.id)
}

// popScope closes the innermost open scope frame, which must be f.
func (v *Verifier) popScope(f *scopeFrame) {
	idx := v.buf.CurrentIndex()
	f.closedAt = &idx
	v.openScopes = v.openScopes[:len(v.openScopes)-1]
}

func (v *Verifier) newScopeID() ScopeID {
	id := ScopeID(len(v.scopesByID))
	return id
}

// requireRoot enforces spec invariant 5: the abstract stack must be
// empty at every exception-scope transition.
func (v *Verifier) requireRoot(transition string) error {
	if !v.stack.IsRoot() {
		return v.fail("ScopeError", ScopeErrorT{Reason: transition + " requires an empty operand stack"})
	}
	return nil
}

// BeginExceptionBlock opens a new try frame and returns its end label.
// The label is not marked automatically; the caller marks it (via
// MarkLabel) once the code that runs after the whole try/catch/finally
// has been emitted, per spec.md §8 scenario 5.
func (v *Verifier) BeginExceptionBlock() (Label, error) {
	if err := v.checkFinalized(); err != nil {
		return Label{}, err
	}
	if err := v.requireRoot("begin_try"); err != nil {
		return Label{}, err
	}
	end := v.DefineLabel("")
	f := &scopeFrame{kind: scopeTry, id: v.newScopeID(), endLabel: end, openedAt: v.buf.CurrentIndex()}
	v.pushScope(f)
	if _, err := v.updateState(OpBeginTry, nil, nil, nil); err != nil {
		return Label{}, err
	}
	return end, nil
}

// BeginCatchBlock opens a catch frame for the given exception type,
// which must be (or derive from) the host's Throwable root type. The
// innermost open scope must be the target try, with no sibling catch
// currently open. On success the abstract stack is reset to hold
// exactly one reference of the caught type (spec invariant 5's
// exception).
func (v *Verifier) BeginCatchBlock(caughtType reflectil.Type) error {
	if err := v.checkFinalized(); err != nil {
		return err
	}
	if caughtType == nil {
		return v.fail("ArgumentNull", ArgumentNullError{Param: "caughtType"})
	}
	if caughtType.IsValueType() {
		return v.fail("InvalidOperation", InvalidOperationError{Reason: "a caught type must be a reference type"})
	}
	if !reflectil.Throwable.IsAssignableFrom(caughtType) {
		return v.fail("InvalidOperation", InvalidOperationError{Reason: caughtType.Name() + " is not assignable to the host's exception base type"})
	}
	if err := v.requireRoot("begin_catch"); err != nil {
		return err
	}
	top, ok := v.topScope()
	if !ok || top.kind != scopeTry {
		return v.fail("ScopeError", ScopeErrorT{Reason: "begin_catch requires an open try as the innermost scope"})
	}
	f := &scopeFrame{kind: scopeCatch, id: v.newScopeID(), parent: top.id, caught: caughtType, openedAt: v.buf.CurrentIndex()}
	v.pushScope(f)
	top.hasCatchOrFinally = true
	if _, err := v.updateState(OpBeginCatch, nil, nil, nil); err != nil {
		return err
	}
	v.stack = v.stack.Push(iltype.RefOf(caughtType))
	return nil
}

// BeginCatchAllBlock is BeginCatchBlock(reflectil.Throwable).
func (v *Verifier) BeginCatchAllBlock() error {
	return v.BeginCatchBlock(reflectil.Throwable)
}

// EndCatchBlock closes the innermost catch frame. It emits a leave
// targeting the owning try's end label, registering both a branch
// patch and a unique-stack branch record — spec.md §9 preserves this
// double bookkeeping from the source library even though its necessity
// for every host emitter is unclear.
func (v *Verifier) EndCatchBlock() error {
	if err := v.checkFinalized(); err != nil {
		return err
	}
	top, ok := v.topScope()
	if !ok || top.kind != scopeCatch {
		return v.fail("ScopeError", ScopeErrorT{Reason: "end_catch with no open catch as the innermost scope"})
	}
	if err := v.requireRoot("end_catch"); err != nil {
		return err
	}
	tryFrame := v.scopesByID[top.parent]
	if err := v.emitLeave(tryFrame.endLabel); err != nil {
		return err
	}
	v.popScope(top)
	return nil
}

// BeginFinallyBlock opens a finally frame for the innermost open try,
// which must not already have one.
func (v *Verifier) BeginFinallyBlock() error {
	if err := v.checkFinalized(); err != nil {
		return err
	}
	if err := v.requireRoot("begin_finally"); err != nil {
		return err
	}
	top, ok := v.topScope()
	if !ok || top.kind != scopeTry {
		return v.fail("ScopeError", ScopeErrorT{Reason: "begin_finally requires an open try as the innermost scope"})
	}
	if top.finallyDefined {
		return v.fail("ScopeError", ScopeErrorT{Reason: "try already has a finally block"})
	}
	f := &scopeFrame{kind: scopeFinally, id: v.newScopeID(), parent: top.id, openedAt: v.buf.CurrentIndex()}
	v.pushScope(f)
	top.hasCatchOrFinally = true
	top.finallyDefined = true
	_, err := v.updateState(OpBeginFinally, nil, nil, nil)
	return err
}

// EndFinallyBlock closes the innermost finally frame, emitting
// endfinally.
func (v *Verifier) EndFinallyBlock() error {
	if err := v.checkFinalized(); err != nil {
		return err
	}
	top, ok := v.topScope()
	if !ok || top.kind != scopeFinally {
		return v.fail("ScopeError", ScopeErrorT{Reason: "end_finally with no open finally as the innermost scope"})
	}
	if err := v.requireRoot("end_finally"); err != nil {
		return err
	}
	if _, err := v.updateState(OpEndFinally, nil, nil, nil); err != nil {
		return err
	}
	v.popScope(top)
	return nil
}

// EndExceptionBlock closes the try itself. All inner catch/finally
// frames must already be closed, and at least one must have been
// defined (spec invariant 4: "A Try requires at least one attached
// Catch or Finally before it may close").
func (v *Verifier) EndExceptionBlock() error {
	if err := v.checkFinalized(); err != nil {
		return err
	}
	top, ok := v.topScope()
	if !ok || top.kind != scopeTry {
		return v.fail("ScopeError", ScopeErrorT{Reason: "end_try with an inner scope still open"})
	}
	if err := v.requireRoot("end_try"); err != nil {
		return err
	}
	if !top.hasCatchOrFinally {
		return v.fail("ScopeError", ScopeErrorT{Reason: "try requires at least one catch or finally"})
	}
	v.popScope(top)
	if _, err := v.updateState(OpEndTry, nil, nil, nil); err != nil {
		return err
	}
	// end_try does not mark the try's end label itself: spec.md §8
	// scenario 5 marks it explicitly afterward (mark(end) following
	// end_try), since branches taken from inside the try/catch bodies
	// via EndCatchBlock's leave need the label still unmarked until the
	// caller says where control resumes.
	return nil
}
