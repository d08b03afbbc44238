// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reflectil models the host reflection facility the verifier
// consults read-only: types, methods, constructors and fields. A real
// integration backs Type with the host runtime's metadata tables; this
// package also ships a small in-memory implementation (SimpleType) good
// enough to drive tests and the cmd/cilc demo without a live CLR host.
package reflectil

import "fmt"

// Type is the reflection surface the verifier needs from a concrete CLR
// type: its identity, whether it is a value type, its assignability
// relationship to other types, and how to construct its array type.
type Type interface {
	// Name is the type's fully-qualified name, used for both display and
	// structural-identity comparisons.
	Name() string
	// IsValueType reports whether instances live inline (structs) rather
	// than behind a reference.
	IsValueType() bool
	// IsAssignableFrom reports whether a value of type other can be used
	// wherever a value of this type is expected (i.e. other is this type
	// or a subtype of it).
	IsAssignableFrom(other Type) bool
	// MakeArrayType returns the vector-array type of this element type.
	MakeArrayType() Type
	// Constructors returns every constructor declared directly on this
	// type, for signature-matching lookups.
	Constructors() []*Ctor
	// Methods returns every method declared directly on this type.
	Methods() []*Method
}

// Method describes a callable method: its declaring type, static-ness,
// parameter types (not including the implicit receiver) and return type.
type Method struct {
	Declaring  Type
	MethodName string
	Static     bool
	Params     []Type
	Return     Type // nil for void
}

func (m *Method) Name() string { return m.Declaring.Name() + "::" + m.MethodName }

func (m *Method) String() string {
	return fmt.Sprintf("%s(%d args)", m.Name(), len(m.Params))
}

// Ctor describes a constructor: its declaring type and formal parameters.
type Ctor struct {
	Declaring Type
	Params    []Type
}

func (c *Ctor) String() string {
	return fmt.Sprintf("%s::.ctor(%d args)", c.Declaring.Name(), len(c.Params))
}

// Field describes a field: its declaring and value types.
type Field struct {
	Declaring Type
	FieldName string
	FieldType Type
}

func (f *Field) Name() string { return f.Declaring.Name() + "::" + f.FieldName }

// sameParams reports whether two parameter lists match exactly, by name.
func sameParams(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name() != b[i].Name() {
			return false
		}
	}
	return true
}

// FindCtor resolves a constructor on t by exact parameter-type signature.
func FindCtor(t Type, params []Type) (*Ctor, bool) {
	for _, c := range t.Constructors() {
		if sameParams(c.Params, params) {
			return c, true
		}
	}
	return nil, false
}

// FindMethod resolves a method on t by name and exact parameter signature.
func FindMethod(t Type, name string, params []Type) (*Method, bool) {
	for _, m := range t.Methods() {
		if m.MethodName == name && sameParams(m.Params, params) {
			return m, true
		}
	}
	return nil, false
}

// ParamNames returns the names of a constructor or method call site's
// parameter types, handy for building an error message.
func ParamNames(params []Type) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name()
	}
	return names
}
