// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iltype is the CIL verification-type lattice: the canonical
// representation of every value the VM can place on the operand stack,
// and the assignability relation (⊑) that decides whether an actual
// operand satisfies an opcode's expected operand type. This is the only
// package in the module that defines subtyping; every other package
// asks iltype rather than re-deriving the rule.
package iltype

import (
	"fmt"

	"github.com/go-cil/ilemit/reflectil"
)

// Kind discriminates the variants of StackType.
type Kind uint8

const (
	Int32 Kind = iota
	Int64
	NativeInt
	Float32
	Float64
	Reference
	ManagedPointer
	Value
	NullLiteral
	Opaque
)

var kindNames = map[Kind]string{
	Int32:          "int32",
	Int64:          "int64",
	NativeInt:      "native int",
	Float32:        "float32",
	Float64:        "float64",
	Reference:      "reference",
	ManagedPointer: "managed pointer",
	Value:          "value",
	NullLiteral:    "null literal",
	Opaque:         "opaque",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("<unknown kind %d>", uint8(k))
}

// StackType is a tagged value describing one slot on the abstract operand
// stack. Type is populated for the variants that carry a concrete CLR
// type (Reference, ManagedPointer, Value, Opaque) and nil otherwise.
type StackType struct {
	Kind Kind
	Type reflectil.Type
}

// Primitive constructors for the kinds with no associated Type.
var (
	TypeInt32       = StackType{Kind: Int32}
	TypeInt64       = StackType{Kind: Int64}
	TypeNativeInt   = StackType{Kind: NativeInt}
	TypeFloat32     = StackType{Kind: Float32}
	TypeFloat64     = StackType{Kind: Float64}
	TypeNullLiteral = StackType{Kind: NullLiteral}
)

// primitiveKinds maps the CLR's built-in value-type names to their own
// StackType Kind. The CLR considers int32/int64/native int/float32/
// float64 value types, but the verification type system tracks them as
// their own primitive kinds rather than as Value(T) — only user-defined
// structs get Value(T) (ECMA-335 §III.1.1.1's "tracked types").
var primitiveKinds = map[string]Kind{
	"System.Int32":   Int32,
	"System.Int64":   Int64,
	"System.IntPtr":  NativeInt,
	"System.Single":  Float32,
	"System.Double":  Float64,
}

// Get canonicalizes a reflected type into its StackType: the five
// built-in primitives become their own Kind, other value types become
// Value(T), and everything else becomes Reference(T).
func Get(t reflectil.Type) StackType {
	if k, ok := primitiveKinds[t.Name()]; ok {
		return StackType{Kind: k}
	}
	if t.IsValueType() {
		return StackType{Kind: Value, Type: t}
	}
	return StackType{Kind: Reference, Type: t}
}

// RefOf is a convenience for StackType{Kind: Reference, Type: t}, used
// where the caller already knows t is a reference type (e.g. the pushed
// type of newobj/newarr).
func RefOf(t reflectil.Type) StackType { return StackType{Kind: Reference, Type: t} }

// PointerTo builds the managed-pointer StackType for t (the type of a
// `ldloca`/`ldarga`/`ldflda` result).
func PointerTo(t reflectil.Type) StackType { return StackType{Kind: ManagedPointer, Type: t} }

// OpaqueOf wraps a host-specific value (e.g. a typed handle the verifier
// does not otherwise understand) that is only ever assignable to itself.
func OpaqueOf(t reflectil.Type) StackType { return StackType{Kind: Opaque, Type: t} }

// ArrayOf returns the StackType pushed by `newarr <T>`: a reference to
// T's vector-array type.
func ArrayOf(t reflectil.Type) StackType {
	return StackType{Kind: Reference, Type: t.MakeArrayType()}
}

// sameType reports whether two StackTypes carrying a reflectil.Type name
// the identical type. Both nil (primitives) counts as equal.
func sameType(a, b StackType) bool {
	if a.Type == nil && b.Type == nil {
		return true
	}
	if a.Type == nil || b.Type == nil {
		return false
	}
	return a.Type.Name() == b.Type.Name()
}

// Equal is structural type identity: same Kind and, for Kinds carrying a
// Type, the identical named type. This is stricter than Assignable and
// is what branch-target stack agreement (spec invariant 3) checks.
func (s StackType) Equal(o StackType) bool {
	if s.Kind != o.Kind {
		return false
	}
	return sameType(s, o)
}

func (s StackType) String() string {
	if s.Type != nil {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Type.Name())
	}
	return s.Kind.String()
}

// Assignable answers actual ⊑ expected: can a value of type actual be
// used wherever a value of type expected is required. This is the only
// place CIL's verification-type subtyping is implemented; every
// subtyping check in the module goes through this function (callers do
// still test an operand's Kind directly for category checks such as
// "is this numeric").
func Assignable(actual, expected StackType) bool {
	switch {
	case actual.Equal(expected):
		return true

	// Integer widening: an int32 satisfies a native-int expectation
	// (used by arithmetic and pointer-sized opcodes), but not the
	// reverse — narrowing is never implicit.
	case actual.Kind == Int32 && expected.Kind == NativeInt:
		return true

	// The null literal satisfies any reference-typed expectation.
	case actual.Kind == NullLiteral && expected.Kind == Reference:
		return true

	// Reference(S) ⊑ Reference(T) iff S is a subtype of T.
	case actual.Kind == Reference && expected.Kind == Reference:
		return expected.Type.IsAssignableFrom(actual.Type)

	default:
		return false
	}
}
