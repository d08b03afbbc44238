// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"errors"
	"testing"

	"github.com/go-cil/ilemit/reflectil"
)

var intType = &reflectil.SimpleType{TypeName: "System.Int32", ValueType: true}

func mustNotFail(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func errKind(err error) string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

func TestNewArrayOfInt(t *testing.T) {
	v := New(MethodSignature{})
	_, err := v.LoadConstantI4(4)
	mustNotFail(t, err)
	_, err = v.NewArray(intType)
	mustNotFail(t, err)
	if v.Stack().Len() != 1 {
		t.Fatalf("stack len = %d, want 1", v.Stack().Len())
	}
}

func TestNewArrayUnderflow(t *testing.T) {
	v := New(MethodSignature{})
	_, err := v.NewArray(intType)
	if errKind(err) != "StackUnderflow" {
		t.Fatalf("err = %v, want StackUnderflow", err)
	}
}

// TestNewArrayBadIndexType is a stand-in for spec.md §8 scenario 3
// (load_constant("x"); new_array<int>(), expecting a
// TypeMismatch(actual=Reference(String))): there is no string-constant
// instruction in this verifier (spec.md §3's own Instruction operand
// enum has no string variant), so a null reference is pushed instead of
// a string one. This exercises the same TypeMismatch path — a
// non-Int32 reference on top where NewArray wants a length — without
// reproducing the scenario's exact type.
func TestNewArrayBadIndexType(t *testing.T) {
	v := New(MethodSignature{})
	_, err := v.LoadNull()
	mustNotFail(t, err)
	_, err = v.NewArray(intType)
	if errKind(err) != "TypeMismatch" {
		t.Fatalf("err = %v, want TypeMismatch", err)
	}
}

func TestNewObjectOnValueTypeRejected(t *testing.T) {
	v := New(MethodSignature{})
	ctor := intType.AddCtor()
	_, err := v.NewObject(ctor)
	if errKind(err) != "InvalidOperation" {
		t.Fatalf("err = %v, want InvalidOperation", err)
	}
}

func TestNewObjectPushesReference(t *testing.T) {
	v := New(MethodSignature{})
	str := reflectil.StringT
	ctor := str.AddCtor()
	_, err := v.NewObject(ctor)
	mustNotFail(t, err)
	top, _ := v.Stack().TopN(1)
	if top[0].Kind.String() != "reference" {
		t.Fatalf("top kind = %v, want reference", top[0].Kind)
	}
}

// TestTryFinallyHappyPath exercises spec.md §8 scenario 5 literally:
// begin_try; branch(end); begin_finally; end_finally; end_try; mark(end);
// ret. end_try does not mark the try's end label itself, so the caller
// must mark it afterward — this is what distinguishes the label from an
// ordinary auto-marked one.
func TestTryFinallyHappyPath(t *testing.T) {
	v := New(MethodSignature{})
	end, err := v.BeginExceptionBlock()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Branch(end); err != nil {
		t.Fatal(err)
	}
	mustNotFail(t, v.BeginFinallyBlock())
	mustNotFail(t, v.EndFinallyBlock())
	mustNotFail(t, v.EndExceptionBlock())
	if err := v.MarkLabel(end); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Ret(); err != nil {
		t.Fatal(err)
	}
	if v.OpenScopeCount() != 0 {
		t.Fatalf("open scopes = %d, want 0", v.OpenScopeCount())
	}
	if len(v.UnmarkedLabels()) != 0 {
		t.Fatalf("unmarked labels = %v, want none", v.UnmarkedLabels())
	}
}

func TestTryClosedWithNoCatchOrFinally(t *testing.T) {
	v := New(MethodSignature{})
	if _, err := v.BeginExceptionBlock(); err != nil {
		t.Fatal(err)
	}
	err := v.EndExceptionBlock()
	if errKind(err) != "ScopeError" {
		t.Fatalf("err = %v, want ScopeError", err)
	}
}

func TestTryCatchHappyPath(t *testing.T) {
	v := New(MethodSignature{})
	end, err := v.BeginExceptionBlock()
	if err != nil {
		t.Fatal(err)
	}
	mustNotFail(t, v.BeginCatchAllBlock())
	mustNotFail(t, must(v.Pop())) // discard the caught exception reference
	mustNotFail(t, v.EndCatchBlock())
	mustNotFail(t, v.EndExceptionBlock())
	if err := v.MarkLabel(end); err != nil {
		t.Fatal(err)
	}
	if len(v.UnmarkedLabels()) != 0 {
		t.Fatalf("unmarked labels = %v, want none", v.UnmarkedLabels())
	}
}

func TestBranchToMismatchedStackRejected(t *testing.T) {
	v := New(MethodSignature{})
	l := v.DefineLabel("join")
	if _, err := v.Branch(l); err != nil {
		t.Fatal(err)
	}
	// Now mark the label with a different stack shape than at the branch
	// site (empty vs. one int32 pushed), which must be rejected.
	if _, err := v.LoadConstantI4(1); err != nil {
		t.Fatal(err)
	}
	err := v.MarkLabel(l)
	if errKind(err) != "LabelError" {
		t.Fatalf("err = %v, want LabelError", err)
	}
}

func TestBranchAgreementAndBackpatch(t *testing.T) {
	v := New(MethodSignature{})
	l := v.DefineLabel("join")
	if _, err := v.Branch(l); err != nil {
		t.Fatal(err)
	}
	if err := v.MarkLabel(l); err != nil {
		t.Fatal(err)
	}
	if v.PendingPatchCount() != 0 {
		t.Fatalf("pending patches = %d, want 0 after mark", v.PendingPatchCount())
	}
}

func TestArithmeticRoundTrip(t *testing.T) {
	v := New(MethodSignature{})
	mustNotFail(t, must(v.LoadConstantI4(1)))
	mustNotFail(t, must(v.LoadConstantI4(2)))
	mustNotFail(t, must(v.Add()))
	if v.Stack().Len() != 1 {
		t.Fatalf("stack len = %d, want 1", v.Stack().Len())
	}
}

func must(_ interface{}, err error) error { return err }

func TestCallMethodByName(t *testing.T) {
	obj := &reflectil.SimpleType{TypeName: "demo.Widget", Bases: []*reflectil.SimpleType{reflectil.Object}}
	obj.AddCtor()
	obj.AddMethod("ToString", false, reflectil.StringT)

	v := New(MethodSignature{})
	if err := must(v.NewObjectByTypes(obj)); err != nil {
		t.Fatal(err)
	}
	if _, err := v.CallByName(obj, "ToString", false); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Param(0); errKind(err) != "InvalidOperation" {
		t.Fatalf("Param(0) on a zero-arg method err = %v, want InvalidOperation", err)
	}
}

func TestFinalizeRejectsMutation(t *testing.T) {
	v := New(MethodSignature{})
	v.MarkFinalized()
	_, err := v.LoadConstantI4(1)
	if errKind(err) != "InvalidOperation" {
		t.Fatalf("err = %v, want InvalidOperation", err)
	}
}
