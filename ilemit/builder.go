// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilemit

import (
	"github.com/go-cil/ilemit/hostvm"
	"github.com/go-cil/ilemit/reflectil"
	"github.com/go-cil/ilemit/verify"
)

// Builder wraps an Emitter for fluent chains: every instruction method
// returns the Builder itself, and once any call fails, every subsequent
// call is a no-op that re-returns the first error. Mirrors
// validate.verifyBody's own "stop on the first failure" discipline,
// generalized from a single error return to a chainable wrapper covering
// the whole instruction surface (spec.md §9, "Exceptions as control
// flow") — try/catch/finally and forward branches are exactly the
// multi-step, error-prone sequences this wrapper exists for.
//
// A handful of methods (DeclareLocal, Param, DefineLabel,
// BeginExceptionBlock) produce a value the caller needs for a later
// call (a Local, a Label) and so return that value directly instead of
// *Builder; they still record a first error into the chain and still
// no-op once one has occurred.
type Builder struct {
	e   *Emitter
	err error
}

// NewBuilder wraps a freshly-created Emitter.
func NewBuilder(sig verify.MethodSignature, opts ...Option) *Builder {
	return &Builder{e: New(sig, opts...)}
}

// Err returns the first error recorded by the chain, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) skip() bool { return b.err != nil }

// Arithmetic, bitwise, compare, convert.

func (b *Builder) Add() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Add()
	return b.fail(err)
}

func (b *Builder) Sub() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Sub()
	return b.fail(err)
}

func (b *Builder) Mul() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Mul()
	return b.fail(err)
}

func (b *Builder) Div() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Div()
	return b.fail(err)
}

func (b *Builder) Rem() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Rem()
	return b.fail(err)
}

func (b *Builder) Neg() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Neg()
	return b.fail(err)
}

func (b *Builder) And() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.And()
	return b.fail(err)
}

func (b *Builder) Or() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Or()
	return b.fail(err)
}

func (b *Builder) Xor() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Xor()
	return b.fail(err)
}

func (b *Builder) Shl() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Shl()
	return b.fail(err)
}

func (b *Builder) Shr() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Shr()
	return b.fail(err)
}

func (b *Builder) Ceq() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Ceq()
	return b.fail(err)
}

func (b *Builder) Cgt() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Cgt()
	return b.fail(err)
}

func (b *Builder) Clt() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Clt()
	return b.fail(err)
}

func (b *Builder) ConvI4() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.ConvI4()
	return b.fail(err)
}

func (b *Builder) ConvI8() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.ConvI8()
	return b.fail(err)
}

func (b *Builder) ConvR4() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.ConvR4()
	return b.fail(err)
}

func (b *Builder) ConvR8() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.ConvR8()
	return b.fail(err)
}

func (b *Builder) ConvU() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.ConvU()
	return b.fail(err)
}

func (b *Builder) Dup() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Dup()
	return b.fail(err)
}

func (b *Builder) Pop() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Pop()
	return b.fail(err)
}

// Constants, locals, args, fields.

func (b *Builder) LoadConstantI4(v int32) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadConstantI4(v)
	return b.fail(err)
}

func (b *Builder) LoadConstantI8(v int64) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadConstantI8(v)
	return b.fail(err)
}

func (b *Builder) LoadConstantR4(v float32) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadConstantR4(v)
	return b.fail(err)
}

func (b *Builder) LoadConstantR8(v float64) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadConstantR8(v)
	return b.fail(err)
}

func (b *Builder) LoadNull() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadNull()
	return b.fail(err)
}

// DeclareLocal is Emitter.DeclareLocal. It returns the zero Local once
// the chain has already failed.
func (b *Builder) DeclareLocal(t reflectil.Type, name string) verify.Local {
	if b.skip() {
		return verify.Local{}
	}
	l, err := b.e.DeclareLocal(t, name)
	b.fail(err)
	return l
}

// Param is Emitter.Param. It returns the zero Local once the chain has
// already failed.
func (b *Builder) Param(i int) verify.Local {
	if b.skip() {
		return verify.Local{}
	}
	l, err := b.e.Param(i)
	b.fail(err)
	return l
}

func (b *Builder) LoadLocal(l verify.Local) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadLocal(l)
	return b.fail(err)
}

func (b *Builder) StoreLocal(l verify.Local) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.StoreLocal(l)
	return b.fail(err)
}

func (b *Builder) LoadLocalAddress(l verify.Local) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadLocalAddress(l)
	return b.fail(err)
}

func (b *Builder) LoadField(f *reflectil.Field) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadField(f)
	return b.fail(err)
}

func (b *Builder) StoreField(f *reflectil.Field) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.StoreField(f)
	return b.fail(err)
}

func (b *Builder) LoadFieldAddress(f *reflectil.Field) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadFieldAddress(f)
	return b.fail(err)
}

func (b *Builder) LoadArg(i int) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadArg(i)
	return b.fail(err)
}

func (b *Builder) StoreArg(i int) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.StoreArg(i)
	return b.fail(err)
}

func (b *Builder) LoadArgAddress(i int) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadArgAddress(i)
	return b.fail(err)
}

func (b *Builder) LoadStaticField(f *reflectil.Field) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.LoadStaticField(f)
	return b.fail(err)
}

func (b *Builder) StoreStaticField(f *reflectil.Field) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.StoreStaticField(f)
	return b.fail(err)
}

// Calls, object/array construction.

func (b *Builder) Call(m *reflectil.Method) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Call(m)
	return b.fail(err)
}

func (b *Builder) CallVirtual(m *reflectil.Method) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.CallVirtual(m)
	return b.fail(err)
}

func (b *Builder) CallByName(t reflectil.Type, name string, virtual bool, params ...reflectil.Type) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.CallByName(t, name, virtual, params...)
	return b.fail(err)
}

func (b *Builder) CallIndirect(sig verify.MethodSignature) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.CallIndirect(sig)
	return b.fail(err)
}

func (b *Builder) NewArray(elemType reflectil.Type) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.NewArray(elemType)
	return b.fail(err)
}

func (b *Builder) NewObject(ctor *reflectil.Ctor) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.NewObject(ctor)
	return b.fail(err)
}

// NewObjectByTypes is Emitter.NewObjectByTypes, chainable.
func (b *Builder) NewObjectByTypes(t reflectil.Type, params ...reflectil.Type) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.NewObjectByTypes(t, params...)
	return b.fail(err)
}

// Branches, labels, switch.

// DefineLabel is Emitter.DefineLabel. DefineLabel itself cannot fail,
// but once the chain has already failed it returns the zero Label
// rather than allocating one the caller has no further use for.
func (b *Builder) DefineLabel(name string) verify.Label {
	if b.skip() {
		return verify.Label{}
	}
	return b.e.DefineLabel(name)
}

func (b *Builder) MarkLabel(l verify.Label) *Builder {
	if b.skip() {
		return b
	}
	return b.fail(b.e.MarkLabel(l))
}

func (b *Builder) Branch(l verify.Label) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Branch(l)
	return b.fail(err)
}

func (b *Builder) BranchIfTrue(l verify.Label) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.BranchIfTrue(l)
	return b.fail(err)
}

func (b *Builder) BranchIfFalse(l verify.Label) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.BranchIfFalse(l)
	return b.fail(err)
}

func (b *Builder) BranchIfEqual(l verify.Label) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.BranchIfEqual(l)
	return b.fail(err)
}

func (b *Builder) BranchIfNotEqual(l verify.Label) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.BranchIfNotEqual(l)
	return b.fail(err)
}

func (b *Builder) Switch(targets []verify.Label) *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Switch(targets)
	return b.fail(err)
}

// Exception scopes.

// BeginExceptionBlock is Emitter.BeginExceptionBlock. It returns the
// zero Label once the chain has already failed.
func (b *Builder) BeginExceptionBlock() verify.Label {
	if b.skip() {
		return verify.Label{}
	}
	l, err := b.e.BeginExceptionBlock()
	b.fail(err)
	return l
}

func (b *Builder) BeginCatchBlock(caughtType reflectil.Type) *Builder {
	if b.skip() {
		return b
	}
	return b.fail(b.e.BeginCatchBlock(caughtType))
}

func (b *Builder) BeginCatchAllBlock() *Builder {
	if b.skip() {
		return b
	}
	return b.fail(b.e.BeginCatchAllBlock())
}

func (b *Builder) EndCatchBlock() *Builder {
	if b.skip() {
		return b
	}
	return b.fail(b.e.EndCatchBlock())
}

func (b *Builder) BeginFinallyBlock() *Builder {
	if b.skip() {
		return b
	}
	return b.fail(b.e.BeginFinallyBlock())
}

func (b *Builder) EndFinallyBlock() *Builder {
	if b.skip() {
		return b
	}
	return b.fail(b.e.EndFinallyBlock())
}

func (b *Builder) EndExceptionBlock() *Builder {
	if b.skip() {
		return b
	}
	return b.fail(b.e.EndExceptionBlock())
}

// Ret is Emitter.Ret, chainable.
func (b *Builder) Ret() *Builder {
	if b.skip() {
		return b
	}
	_, err := b.e.Ret()
	return b.fail(err)
}

// CreateDelegate finalizes the wrapped Emitter, short-circuiting on any
// error recorded earlier in the chain.
func (b *Builder) CreateDelegate() (hostvm.Delegate, error) {
	if b.err != nil {
		return nil, b.err
	}
	d, err := b.e.CreateDelegate()
	if err != nil {
		b.err = err
	}
	return d, err
}
