// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ilstack is the verifier's persistent abstract operand stack:
// an immutable, structurally-shared list of iltype.StackType plus the
// bookkeeping (root-ness, a stable shape identity) the verifier core
// needs for branch-target agreement checks. Grounded on the
// stack-of-stack-heights threaded through validate.mockVM and
// disasm.Disassemble in the teacher, generalized from a mutable slice
// to a persistent list so a snapshot taken at a branch site survives
// later pushes/pops of the live stack (spec.md §5).
package ilstack

import (
	"strings"

	"github.com/go-cil/ilemit/iltype"
)

// node is one cons-cell of the persistent stack.
type node struct {
	top  iltype.StackType
	prev *node
	len  int
}

// Stack is an immutable snapshot of the abstract operand stack at some
// program point. The zero value is the empty stack at a method/scope's
// entry point.
type Stack struct {
	top *node
}

// New returns a fresh, empty stack — the root stack of a method body or
// of a freshly-entered exception scope.
func New() Stack { return Stack{} }

// Push returns a new Stack with t pushed on top. The receiver is left
// unmodified: earlier snapshots referencing it remain valid.
func (s Stack) Push(t iltype.StackType) Stack {
	n := 1
	if s.top != nil {
		n = s.top.len + 1
	}
	logger.Printf("push %s, depth now %d", t, n)
	return Stack{top: &node{top: t, prev: s.top, len: n}}
}

// Len reports the number of values currently on the stack.
func (s Stack) Len() int {
	if s.top == nil {
		return 0
	}
	return s.top.len
}

// IsRoot reports whether the stack is empty — the state required at
// method entry and at every exception-scope transition (spec invariant
// 5).
func (s Stack) IsRoot() bool { return s.top == nil }

// TopN returns the top n values, topmost-first, without modifying s.
// Returns ok=false if the stack holds fewer than n values.
func (s Stack) TopN(n int) (vals []iltype.StackType, ok bool) {
	if n < 0 || s.Len() < n {
		return nil, false
	}
	vals = make([]iltype.StackType, n)
	cur := s.top
	for i := 0; i < n; i++ {
		vals[i] = cur.top
		cur = cur.prev
	}
	return vals, true
}

// PopN returns the stack with its top n values removed, along with
// those values (topmost-first). ok is false — and the returned stack is
// the receiver, unmodified — if there are fewer than n values.
func (s Stack) PopN(n int) (rest Stack, popped []iltype.StackType, ok bool) {
	popped, ok = s.TopN(n)
	if !ok {
		logger.Printf("pop %d: stack underflow at depth %d", n, s.Len())
		return s, nil, false
	}
	cur := s.top
	for i := 0; i < n; i++ {
		cur = cur.prev
	}
	return Stack{top: cur}, popped, true
}

// Identity is a stable hash of a stack's shape, used as a map key to
// record "what stack shape flowed into this branch target" (spec.md
// §3, branches_by_stack).
type Identity string

// Unique computes s's Identity: the sequence of element kinds/types
// from bottom to top, which is exactly the information Equal compares.
func (s Stack) Unique() Identity {
	vals, _ := s.TopN(s.Len())
	var b strings.Builder
	for i := len(vals) - 1; i >= 0; i-- {
		b.WriteString(vals[i].String())
		b.WriteByte('|')
	}
	return Identity(b.String())
}

// Equal is true structural equality (not assignability): same length,
// and each element pairwise iltype.StackType.Equal. This is what spec
// invariant 3 (branch-target agreement) checks — a looser assignability
// check would let a method accept an instruction stream the host JIT's
// own (stricter, exact) verifier rejects.
func (s Stack) Equal(o Stack) bool {
	if s.Len() != o.Len() {
		return false
	}
	a, _ := s.TopN(s.Len())
	b, _ := o.TopN(o.Len())
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (s Stack) String() string {
	vals, _ := s.TopN(s.Len())
	parts := make([]string, len(vals))
	for i, v := range vals {
		// vals is topmost-first; print bottom-to-top for readability.
		parts[len(vals)-1-i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
