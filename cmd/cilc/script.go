// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-cil/ilemit/hostvm"
	"github.com/go-cil/ilemit/ilemit"
	"github.com/go-cil/ilemit/reflectil"
	"github.com/go-cil/ilemit/verify"
)

// compileScript reads a one-instruction-per-line textual script and
// drives an ilemit.Emitter through it, returning the finalized delegate.
// Labels are declared with "label <name>:" on their own line; br/brtrue/
// brfalse take a label name; ldc.i4 takes a decimal int32 argument.
// Unrecognized or malformed lines are a compile error, not a verifier
// error — the verifier only ever sees well-formed instructions.
func compileScript(r io.Reader, retType reflectil.Type) (*ilemit.Emitter, hostvm.Delegate, error) {
	e := ilemit.New(verify.MethodSignature{Return: retType})
	labels := map[string]verify.Label{}

	label := func(name string) verify.Label {
		if l, ok := labels[name]; ok {
			return l
		}
		l := e.DefineLabel(name)
		labels[name] = l
		return l
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		op := fields[0]
		args := fields[1:]

		var err error
		switch {
		case op == "label" && len(args) == 1:
			err = e.MarkLabel(label(strings.TrimSuffix(args[0], ":")))
		case op == "ldc.i4":
			err = requireArgs(args, 1, op)
			if err == nil {
				var v int64
				v, err = strconv.ParseInt(args[0], 10, 32)
				if err == nil {
					_, err = e.LoadConstantI4(int32(v))
				}
			}
		case op == "add":
			_, err = e.Add()
		case op == "sub":
			_, err = e.Sub()
		case op == "mul":
			_, err = e.Mul()
		case op == "div":
			_, err = e.Div()
		case op == "rem":
			_, err = e.Rem()
		case op == "neg":
			_, err = e.Neg()
		case op == "dup":
			_, err = e.Dup()
		case op == "pop":
			_, err = e.Pop()
		case op == "br":
			err = requireArgs(args, 1, op)
			if err == nil {
				_, err = e.Branch(label(args[0]))
			}
		case op == "brtrue":
			err = requireArgs(args, 1, op)
			if err == nil {
				_, err = e.BranchIfTrue(label(args[0]))
			}
		case op == "brfalse":
			err = requireArgs(args, 1, op)
			if err == nil {
				_, err = e.BranchIfFalse(label(args[0]))
			}
		case op == "ret":
			_, err = e.Ret()
		default:
			err = fmt.Errorf("line %d: unknown instruction %q", lineNo, op)
		}
		if err != nil {
			return e, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return e, nil, err
	}

	delegate, err := e.CreateDelegate()
	return e, delegate, err
}

func requireArgs(args []string, n int, op string) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", op, n, len(args))
	}
	return nil
}
