// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ildisasm

import (
	"strings"
	"testing"

	"github.com/go-cil/ilemit/ilemit"
	"github.com/go-cil/ilemit/reflectil"
	"github.com/go-cil/ilemit/verify"
)

func TestDisassembleAddsTwoConstants(t *testing.T) {
	retType := &reflectil.SimpleType{TypeName: "System.Int32", ValueType: true}
	e := ilemit.New(verify.MethodSignature{Return: retType})
	if _, err := e.LoadConstantI4(2); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadConstantI4(3); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Add(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Ret(); err != nil {
		t.Fatal(err)
	}

	lines := Disassemble(e.Buffer())
	if len(lines) != 4 {
		t.Fatalf("want 4 instructions, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "ldc.i4") || !strings.Contains(lines[0], "2") {
		t.Errorf("line 0 = %q, want ldc.i4 2", lines[0])
	}
	if !strings.Contains(lines[2], "add") {
		t.Errorf("line 2 = %q, want add", lines[2])
	}
	if !strings.Contains(lines[3], "ret") {
		t.Errorf("line 3 = %q, want ret", lines[3])
	}
}

func TestLineUnknownIndexIsNotOK(t *testing.T) {
	e := ilemit.New(verify.MethodSignature{})
	if _, err := e.Ret(); err != nil {
		t.Fatal(err)
	}
	if _, ok := Line(e.Buffer(), 99); ok {
		t.Error("Line at an out-of-range index should report ok=false")
	}
}
