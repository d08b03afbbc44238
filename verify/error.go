// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/ilstack"
	"github.com/go-cil/ilemit/iltype"
)

// Error wraps every verification failure with the information spec.md
// §7 requires of it: the offending instruction's pending index, the
// current abstract stack snapshot, and a human-readable message. It is
// the single error type every exported Verifier method returns —
// callers type-switch on Err via errors.As if they need to distinguish
// failure kinds programmatically.
type Error struct {
	Kind             string // e.g. "StackUnderflow", "TypeMismatch"
	Err              error
	InstructionIndex ilbuf.Index
	Stack            ilstack.Stack
}

func (e *Error) Error() string {
	return fmt.Sprintf("verify: %s at instruction %d (stack=%s): %v", e.Kind, e.InstructionIndex, e.Stack, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ArgumentNullError is returned when a required reference parameter
// (a type, method, or label) was nil.
type ArgumentNullError struct{ Param string }

func (e ArgumentNullError) Error() string {
	return fmt.Sprintf("argument %q must not be nil", e.Param)
}

// StackUnderflowError is returned if an instruction consumes more
// operands than are present on the stack.
type StackUnderflowError struct{ Required, Have int }

func (e StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow: required %d operand(s), have %d", e.Required, e.Have)
}

// TypeMismatchError is returned when an operand's assignability check
// fails.
type TypeMismatchError struct {
	Position       int
	Expected, Got  iltype.StackType
	Opcode         string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: operand %d: got %v, wanted assignable to %v", e.Opcode, e.Position, e.Got, e.Expected)
}

// ScopeErrorT is returned for mis-nested or prematurely-closed
// try/catch/finally transitions.
type ScopeErrorT struct{ Reason string }

func (e ScopeErrorT) Error() string { return "scope error: " + e.Reason }

// LabelErrorT is returned for unknown-label marks, double marks,
// unmarked-at-finalize labels, and branch-target stack disagreement.
type LabelErrorT struct {
	Reason string
	Label  LabelID
}

func (e LabelErrorT) Error() string {
	return fmt.Sprintf("label %d: %s", e.Label, e.Reason)
}

// NoSuchConstructorError is returned when a by-parameter-types
// constructor lookup fails to resolve an exact overload.
type NoSuchConstructorError struct {
	Type   string
	Params []string
}

func (e NoSuchConstructorError) Error() string {
	return fmt.Sprintf("type %q has no constructor accepting (%v)", e.Type, e.Params)
}

// NoSuchMethodError is returned when a by-parameter-types method
// lookup fails to resolve an exact overload.
type NoSuchMethodError struct {
	Type, Method string
	Params       []string
}

func (e NoSuchMethodError) Error() string {
	return fmt.Sprintf("type %q has no method %q accepting (%v)", e.Type, e.Method, e.Params)
}

// InvalidOperationError covers structural misuse that isn't a typing,
// arity, or scope problem on its own: constructing a value type with
// new_object, mutating a finalized verifier, and similar.
type InvalidOperationError struct{ Reason string }

func (e InvalidOperationError) Error() string { return "invalid operation: " + e.Reason }

// OwnershipError is returned when a Label or Local produced by a
// different Verifier instance is passed to this one.
type OwnershipError struct{ Token string }

func (e OwnershipError) Error() string {
	return fmt.Sprintf("%s belongs to a different verifier instance", e.Token)
}

// wrapNoSuchConstructor wraps a NoSuchConstructorError in a "resolving
// constructor on T" context message via github.com/pkg/errors; callers
// that want the NoSuchConstructorError itself get it with errors.Cause.
func wrapNoSuchConstructor(typeName string, params []string) error {
	return errors.Wrapf(NoSuchConstructorError{Type: typeName, Params: params}, "resolving constructor on %s", typeName)
}

func wrapNoSuchMethod(typeName, method string, params []string) error {
	return errors.Wrapf(NoSuchMethodError{Type: typeName, Method: method, Params: params}, "resolving method %s on %s", method, typeName)
}
