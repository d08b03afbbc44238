// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilemit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-cil/ilemit/iltype"
	"github.com/go-cil/ilemit/reflectil"
	"github.com/go-cil/ilemit/verify"
)

func TestCreateDelegateAddsTwoConstants(t *testing.T) {
	e := New(verify.MethodSignature{Return: &reflectil.SimpleType{TypeName: "System.Int32", ValueType: true}})
	_, err := e.AddI4(2, 3)
	require.NoError(t, err)
	_, err = e.Ret()
	require.NoError(t, err)

	delegate, err := e.CreateDelegate()
	require.NoError(t, err)

	got, err := delegate()
	require.NoError(t, err)
	assert.EqualValues(t, 5, got)
}

func TestCreateDelegateIsIdempotent(t *testing.T) {
	e := New(verify.MethodSignature{})
	_, err := e.Ret()
	require.NoError(t, err)

	d1, err := e.CreateDelegate()
	require.NoError(t, err)
	d2, err := e.CreateDelegate()
	require.NoError(t, err)

	r1, err := d1()
	require.NoError(t, err)
	r2, err := d2()
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestCreateDelegateRejectsUnmarkedLabel(t *testing.T) {
	e := New(verify.MethodSignature{})
	e.DefineLabel("never_marked")
	_, err := e.Ret()
	require.NoError(t, err)

	_, err = e.CreateDelegate()
	assert.Error(t, err)

	var ve *verify.Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "FinalizeError", ve.Kind)
}

func TestCreateDelegateRejectsOpenScope(t *testing.T) {
	e := New(verify.MethodSignature{})
	end, err := e.BeginExceptionBlock()
	require.NoError(t, err)
	// Mark the try's end label so the open scope is the only unmet check.
	require.NoError(t, e.MarkLabel(end))

	_, err = e.CreateDelegate()
	assert.Error(t, err)
	assert.ErrorContains(t, err, "still open")
}

func TestCreateDelegateRejectsResidualStackMismatch(t *testing.T) {
	e := New(verify.MethodSignature{}) // void
	_, err := e.LoadConstantI4(1)
	require.NoError(t, err)

	_, err = e.CreateDelegate()
	assert.Error(t, err)
}

func TestBuilderShortCircuitsOnFirstError(t *testing.T) {
	// Sub with nothing pushed yet is a stack underflow; Add and Ret must
	// then be no-ops that preserve the first error.
	b := NewBuilder(verify.MethodSignature{})
	b.Sub()
	b.Add()
	b.Ret()
	assert.Error(t, b.Err())

	_, err := b.CreateDelegate()
	assert.Equal(t, b.Err(), err)
}

func TestBuilderHappyPath(t *testing.T) {
	retType := &reflectil.SimpleType{TypeName: "System.Int32", ValueType: true}
	b := NewBuilder(verify.MethodSignature{Return: retType})
	b.LoadConstantI4(10)
	b.LoadConstantI4(4)
	b.Sub()
	b.Ret()
	require.NoError(t, b.Err())

	delegate, err := b.CreateDelegate()
	require.NoError(t, err)
	got, err := delegate()
	require.NoError(t, err)
	assert.EqualValues(t, 6, got)
}

func TestWithCacheIsHonored(t *testing.T) {
	cache, err := iltype.NewCache(8)
	require.NoError(t, err)
	e := New(verify.MethodSignature{}, WithCache(cache))
	require.NotNil(t, e.Verifier)
}
