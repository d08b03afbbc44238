// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilstack

import (
	"testing"

	"github.com/go-cil/ilemit/iltype"
)

func TestPushPopPersistence(t *testing.T) {
	s0 := New()
	if !s0.IsRoot() {
		t.Fatalf("fresh stack must be root")
	}

	s1 := s0.Push(iltype.TypeInt32)
	s2 := s1.Push(iltype.TypeFloat64)

	// s1 must be unaffected by building s2 from it.
	if s1.Len() != 1 {
		t.Fatalf("s1 mutated: len = %d, want 1", s1.Len())
	}
	if s2.Len() != 2 {
		t.Fatalf("s2 len = %d, want 2", s2.Len())
	}

	rest, popped, ok := s2.PopN(1)
	if !ok || len(popped) != 1 || !popped[0].Equal(iltype.TypeFloat64) {
		t.Fatalf("PopN(1) = %v, %v, %v", rest, popped, ok)
	}
	if !rest.Equal(s1) {
		t.Fatalf("popping s2's top should yield s1's shape")
	}
}

func TestPopUnderflow(t *testing.T) {
	s := New().Push(iltype.TypeInt32)
	if _, _, ok := s.PopN(2); ok {
		t.Fatalf("popping more than present should fail")
	}
}

func TestTopNOrder(t *testing.T) {
	s := New().Push(iltype.TypeInt32).Push(iltype.TypeInt64).Push(iltype.TypeFloat32)
	top2, ok := s.TopN(2)
	if !ok {
		t.Fatal("TopN(2) failed")
	}
	if !top2[0].Equal(iltype.TypeFloat32) || !top2[1].Equal(iltype.TypeInt64) {
		t.Fatalf("TopN order wrong: %v", top2)
	}
}

func TestEqualAndUnique(t *testing.T) {
	a := New().Push(iltype.TypeInt32).Push(iltype.TypeFloat64)
	b := New().Push(iltype.TypeInt32).Push(iltype.TypeFloat64)
	c := New().Push(iltype.TypeFloat64).Push(iltype.TypeInt32)

	if !a.Equal(b) {
		t.Fatalf("stacks with the same shape built independently must be Equal")
	}
	if a.Equal(c) {
		t.Fatalf("stacks with different orderings must not be Equal")
	}
	if a.Unique() != b.Unique() {
		t.Fatalf("Unique() must agree for Equal stacks")
	}
	if a.Unique() == c.Unique() {
		t.Fatalf("Unique() must differ for unequal shapes")
	}
}
