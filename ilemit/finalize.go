// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilemit

import (
	"fmt"

	"github.com/go-cil/ilemit/hostvm"
	"github.com/go-cil/ilemit/iltype"
	"github.com/go-cil/ilemit/verify"
)

func (e *Emitter) finalizeError(reason string) *verify.Error {
	return &verify.Error{
		Kind:             "FinalizeError",
		Err:              fmt.Errorf("%s", reason),
		InstructionIndex: e.Buffer().CurrentIndex(),
		Stack:            e.Stack(),
	}
}

// CreateDelegate runs the five-point finalization checklist of spec.md
// §4.8 and, on success, hands the instruction buffer to the configured
// hostvm.Host. A second call is idempotent: it returns the same cached
// delegate without re-running any check or touching the verifier again.
func (e *Emitter) CreateDelegate() (hostvm.Delegate, error) {
	if e.Finalized() {
		e.logger.Print("create_delegate: already finalized, returning cached delegate")
		return e.delegate, nil
	}

	if unmarked := e.UnmarkedLabels(); len(unmarked) > 0 {
		return nil, e.finalizeError(fmt.Sprintf("%d label(s) defined but never marked", len(unmarked)))
	}
	if n := e.OpenScopeCount(); n > 0 {
		return nil, e.finalizeError(fmt.Sprintf("%d exception scope frame(s) still open", n))
	}
	if n := e.PendingPatchCount(); n > 0 {
		return nil, e.finalizeError(fmt.Sprintf("%d forward branch(es) never resolved", n))
	}

	// Point 4 of spec.md §4.8: the final reachable instruction's residual
	// stack must be compatible with the method's return type. A method
	// that already executed an explicit Ret leaves the stack empty (Ret
	// itself pops the return value and checked its type then); a root
	// stack is therefore always acceptable here regardless of sig.Return.
	// Anything left on the stack without having gone through Ret must
	// still match the declared return type.
	sig := e.Signature()
	stack := e.Stack()
	if !stack.IsRoot() {
		if sig.Return == nil {
			return nil, e.finalizeError(fmt.Sprintf("void method leaves a non-empty residual stack %s", stack))
		}
		top, _ := stack.TopN(1)
		want := iltype.Get(sig.Return)
		if !iltype.Assignable(top[0], want) {
			return nil, e.finalizeError(fmt.Sprintf("residual stack %s is not compatible with return type %s", stack, want))
		}
	}

	delegate, err := e.host.Finalize(e.Buffer(), sig, e.NumLocals())
	if err != nil {
		return nil, e.finalizeError(fmt.Sprintf("host finalize failed: %v", err))
	}

	e.delegate = delegate
	e.MarkFinalized()
	return delegate, nil
}
