// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reflectil

// SimpleType is a minimal, in-memory Type good enough to exercise the
// verifier and the cmd/cilc demo without a live host reflection service.
// It models single-inheritance-plus-interfaces the way the CLR does: a
// type is assignable from itself, from anything that has it in its Bases
// chain, and from anything that declares it among its Interfaces.
type SimpleType struct {
	TypeName   string
	ValueType  bool
	Bases      []*SimpleType // direct base type, and its bases transitively
	Interfaces []*SimpleType // interfaces this type (transitively) implements

	ctors   []*Ctor
	methods []*Method
	array   *SimpleType
}

func (t *SimpleType) Name() string       { return t.TypeName }
func (t *SimpleType) IsValueType() bool  { return t.ValueType }
func (t *SimpleType) Constructors() []*Ctor { return t.ctors }
func (t *SimpleType) Methods() []*Method    { return t.methods }

// AddCtor registers a constructor for use by FindCtor/NewObject lookups.
func (t *SimpleType) AddCtor(params ...Type) *Ctor {
	c := &Ctor{Declaring: t, Params: params}
	t.ctors = append(t.ctors, c)
	return c
}

// AddMethod registers a method for use by FindMethod/call lookups.
func (t *SimpleType) AddMethod(name string, static bool, ret Type, params ...Type) *Method {
	m := &Method{Declaring: t, MethodName: name, Static: static, Return: ret, Params: params}
	t.methods = append(t.methods, m)
	return m
}

// IsAssignableFrom walks other's base-type and interface chain looking
// for this type's name.
func (t *SimpleType) IsAssignableFrom(other Type) bool {
	if other == nil {
		return false
	}
	if other.Name() == t.TypeName || t.TypeName == Object.TypeName {
		return true
	}
	o, ok := other.(*SimpleType)
	if !ok {
		return false
	}
	for _, b := range o.Bases {
		if t.IsAssignableFrom(b) {
			return true
		}
	}
	for _, i := range o.Interfaces {
		if t.IsAssignableFrom(i) {
			return true
		}
	}
	return false
}

// MakeArrayType returns (and memoizes) t's vector-array type.
func (t *SimpleType) MakeArrayType() Type {
	if t.array == nil {
		t.array = &SimpleType{TypeName: t.TypeName + "[]"}
	}
	return t.array
}

// Well-known root types, analogous to System.Object/System.Exception in the
// CLR's reflection surface. Every SimpleType implicitly derives from Object
// unless it declares its own Bases.
var (
	Object    = &SimpleType{TypeName: "System.Object"}
	Throwable = &SimpleType{TypeName: "System.Exception", Bases: []*SimpleType{Object}}
	StringT   = &SimpleType{TypeName: "System.String", Bases: []*SimpleType{Object}}
)
