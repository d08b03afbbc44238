// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilemit

import (
	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/reflectil"
)

// This file is pure sugar (spec.md §9, "Generic arity-N convenience
// overloads"): fixed-arity forwarders to the variadic entry points on
// Emitter's embedded *verify.Verifier, so a caller with a statically
// known argument count doesn't have to build a []reflectil.Type just to
// call NewObjectByTypes/CallByName. Each is a thin, individually
// untested wrapper per spec's own guidance.

// NewObject0 constructs t via its zero-argument constructor.
func (e *Emitter) NewObject0(t reflectil.Type) (ilbuf.Index, error) {
	return e.NewObjectByTypes(t)
}

// NewObject1 constructs t via its one-argument constructor.
func (e *Emitter) NewObject1(t reflectil.Type, p0 reflectil.Type) (ilbuf.Index, error) {
	return e.NewObjectByTypes(t, p0)
}

// NewObject2 constructs t via its two-argument constructor.
func (e *Emitter) NewObject2(t reflectil.Type, p0, p1 reflectil.Type) (ilbuf.Index, error) {
	return e.NewObjectByTypes(t, p0, p1)
}

// NewObject3 constructs t via its three-argument constructor.
func (e *Emitter) NewObject3(t reflectil.Type, p0, p1, p2 reflectil.Type) (ilbuf.Index, error) {
	return e.NewObjectByTypes(t, p0, p1, p2)
}

// Call0 calls the named zero-argument, non-virtual method on t.
func (e *Emitter) Call0(t reflectil.Type, name string) (ilbuf.Index, error) {
	return e.CallByName(t, name, false)
}

// Call1 calls the named one-argument, non-virtual method on t.
func (e *Emitter) Call1(t reflectil.Type, name string, p0 reflectil.Type) (ilbuf.Index, error) {
	return e.CallByName(t, name, false, p0)
}

// Call2 calls the named two-argument, non-virtual method on t.
func (e *Emitter) Call2(t reflectil.Type, name string, p0, p1 reflectil.Type) (ilbuf.Index, error) {
	return e.CallByName(t, name, false, p0, p1)
}

// Call3 calls the named three-argument, non-virtual method on t.
func (e *Emitter) Call3(t reflectil.Type, name string, p0, p1, p2 reflectil.Type) (ilbuf.Index, error) {
	return e.CallByName(t, name, false, p0, p1, p2)
}

// CallVirtual0 virtually dispatches the named zero-argument method on t.
func (e *Emitter) CallVirtual0(t reflectil.Type, name string) (ilbuf.Index, error) {
	return e.CallByName(t, name, true)
}

// CallVirtual1 virtually dispatches the named one-argument method on t.
func (e *Emitter) CallVirtual1(t reflectil.Type, name string, p0 reflectil.Type) (ilbuf.Index, error) {
	return e.CallByName(t, name, true, p0)
}

// CallVirtual2 virtually dispatches the named two-argument method on t.
func (e *Emitter) CallVirtual2(t reflectil.Type, name string, p0, p1 reflectil.Type) (ilbuf.Index, error) {
	return e.CallByName(t, name, true, p0, p1)
}

// CallVirtual3 virtually dispatches the named three-argument method on t.
func (e *Emitter) CallVirtual3(t reflectil.Type, name string, p0, p1, p2 reflectil.Type) (ilbuf.Index, error) {
	return e.CallByName(t, name, true, p0, p1, p2)
}

// AddI4 pushes a and b as int32 constants and adds them.
func (e *Emitter) AddI4(a, b int32) (ilbuf.Index, error) {
	if _, err := e.LoadConstantI4(a); err != nil {
		return 0, err
	}
	if _, err := e.LoadConstantI4(b); err != nil {
		return 0, err
	}
	return e.Add()
}

// SubI4 pushes a and b as int32 constants and subtracts them.
func (e *Emitter) SubI4(a, b int32) (ilbuf.Index, error) {
	if _, err := e.LoadConstantI4(a); err != nil {
		return 0, err
	}
	if _, err := e.LoadConstantI4(b); err != nil {
		return 0, err
	}
	return e.Sub()
}

// MulI4 pushes a and b as int32 constants and multiplies them.
func (e *Emitter) MulI4(a, b int32) (ilbuf.Index, error) {
	if _, err := e.LoadConstantI4(a); err != nil {
		return 0, err
	}
	if _, err := e.LoadConstantI4(b); err != nil {
		return 0, err
	}
	return e.Mul()
}

// DivI4 pushes a and b as int32 constants and divides them.
func (e *Emitter) DivI4(a, b int32) (ilbuf.Index, error) {
	if _, err := e.LoadConstantI4(a); err != nil {
		return 0, err
	}
	if _, err := e.LoadConstantI4(b); err != nil {
		return 0, err
	}
	return e.Div()
}
