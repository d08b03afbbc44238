// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iltype

import (
	"testing"

	"github.com/go-cil/ilemit/reflectil"
)

func TestAssignable(t *testing.T) {
	animal := &reflectil.SimpleType{TypeName: "Animal"}
	dog := &reflectil.SimpleType{TypeName: "Dog", Bases: []*reflectil.SimpleType{animal}}
	cat := &reflectil.SimpleType{TypeName: "Cat", Bases: []*reflectil.SimpleType{animal}}

	tcs := []struct {
		name           string
		actual         StackType
		expected       StackType
		wantAssignable bool
	}{
		{"int32 to int32", TypeInt32, TypeInt32, true},
		{"int32 widens to native int", TypeInt32, TypeNativeInt, true},
		{"native int does not narrow to int32", TypeNativeInt, TypeInt32, false},
		{"null satisfies any reference", TypeNullLiteral, RefOf(animal), true},
		{"null does not satisfy a value type", TypeNullLiteral, Get(mkValueType("Point")), false},
		{"dog satisfies animal", RefOf(dog), RefOf(animal), true},
		{"animal does not satisfy dog", RefOf(animal), RefOf(dog), false},
		{"dog does not satisfy cat", RefOf(dog), RefOf(cat), false},
		{"int32 does not satisfy float64", TypeInt32, TypeFloat64, false},
		{"exact value type match", Get(mkValueType("Point")), Get(mkValueType("Point")), true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := Assignable(tc.actual, tc.expected); got != tc.wantAssignable {
				t.Errorf("Assignable(%v, %v) = %v, want %v", tc.actual, tc.expected, got, tc.wantAssignable)
			}
		})
	}
}

func mkValueType(name string) *reflectil.SimpleType {
	return &reflectil.SimpleType{TypeName: name, ValueType: true}
}

func TestEqualIsStructural(t *testing.T) {
	a := &reflectil.SimpleType{TypeName: "Foo"}
	b := &reflectil.SimpleType{TypeName: "Foo"}
	if !RefOf(a).Equal(RefOf(b)) {
		t.Fatalf("two distinct Type values naming the same type should be Equal")
	}
	if RefOf(a).Equal(TypeInt32) {
		t.Fatalf("different kinds must not be Equal")
	}
}

func TestArrayOf(t *testing.T) {
	elem := &reflectil.SimpleType{TypeName: "Int32Boxed"}
	arr := ArrayOf(elem)
	if arr.Kind != Reference {
		t.Fatalf("array type must be a Reference")
	}
	if arr.Type.Name() != "Int32Boxed[]" {
		t.Fatalf("unexpected array type name %q", arr.Type.Name())
	}
}

func TestCache(t *testing.T) {
	c, err := NewCache(4)
	if err != nil {
		t.Fatal(err)
	}
	ty := mkValueType("Cached")
	first := c.Get(ty)
	second := c.Get(ty)
	if first != second {
		t.Fatalf("cached lookups should agree")
	}
	var nilCache *Cache
	if nilCache.Get(ty) != Get(ty) {
		t.Fatalf("a nil cache must fall back to direct computation")
	}
}
