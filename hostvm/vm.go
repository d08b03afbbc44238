// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hostvm is a reference host runtime: the concrete stand-in for
// the "host emitter" that spec.md's finalizer hands a validated
// instruction buffer to. It is a minimal stack machine interpreter over
// int64 values, not a JIT — grounded on exec.VM's context/funcTable
// dispatch shape in the teacher, generalized from WASM's byte-coded
// opcodes to ilbuf's structured instruction entries.
package hostvm

import (
	"encoding/binary"
	"fmt"

	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/verify"
)

// Delegate is a callable produced by Finalize: the runnable form of a
// verified instruction buffer.
type Delegate func(args ...int64) (int64, error)

// Host is the external collaborator spec.md §6 calls the "host
// emitter": given a finished instruction buffer, the signature it was
// verified against, and the number of locals it declared, produce a
// callable.
type Host interface {
	Finalize(buf *ilbuf.Buffer, sig verify.MethodSignature, numLocals int) (Delegate, error)
}

// VM is the reference Host: it interprets the buffer directly rather
// than compiling it, and only executes integer arithmetic, bitwise and
// compare ops, dup/pop/nop, int32/int64 constants, ldnull, local and
// argument loads/stores, ret, and the br/brtrue/brfalse/beq/bne
// branches. Every other opcode — conversions, float constants, address
// loads, field access, calls, newobj/newarr, switch, leave, and the
// exception-scope markers — has no handler, and a Delegate that reaches
// one returns ErrUnsupportedOpcode.
type VM struct {
	funcTable [256]func(*context) error
}

// ErrUnsupportedOpcode is returned by a Delegate when it reaches an
// opcode the reference interpreter cannot execute on its own.
type ErrUnsupportedOpcode byte

func (e ErrUnsupportedOpcode) Error() string {
	return fmt.Sprintf("hostvm: opcode %d is not supported by the reference VM", byte(e))
}

// context is one invocation's mutable execution state. args and locals
// are kept in separate slices because verify assigns their slot ids from
// independent counters that both start at zero.
type context struct {
	stack  []int64
	args   []int64
	locals []int64
	buf    *ilbuf.Buffer
	pc     int
	ret    int64
	halted bool
}

func (c *context) push(v int64) { c.stack = append(c.stack, v) }

func (c *context) pop() int64 {
	v := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return v
}

// New builds a reference VM with its opcode dispatch table populated.
func New() *VM {
	vm := &VM{}
	vm.install(verify.OpAdd, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a + b); return nil })
	vm.install(verify.OpSub, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a - b); return nil })
	vm.install(verify.OpMul, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a * b); return nil })
	vm.install(verify.OpDiv, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a / b); return nil })
	vm.install(verify.OpRem, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a % b); return nil })
	vm.install(verify.OpNeg, func(c *context) error { c.push(-c.pop()); return nil })
	vm.install(verify.OpAnd, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a & b); return nil })
	vm.install(verify.OpOr, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a | b); return nil })
	vm.install(verify.OpXor, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a ^ b); return nil })
	vm.install(verify.OpShl, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a << uint(b)); return nil })
	vm.install(verify.OpShr, func(c *context) error { b, a := c.pop(), c.pop(); c.push(a >> uint(b)); return nil })
	vm.install(verify.OpCeq, func(c *context) error { b, a := c.pop(), c.pop(); c.push(boolInt(a == b)); return nil })
	vm.install(verify.OpCgt, func(c *context) error { b, a := c.pop(), c.pop(); c.push(boolInt(a > b)); return nil })
	vm.install(verify.OpClt, func(c *context) error { b, a := c.pop(), c.pop(); c.push(boolInt(a < b)); return nil })
	vm.install(verify.OpDup, func(c *context) error { v := c.pop(); c.push(v); c.push(v); return nil })
	vm.install(verify.OpPop, func(c *context) error { c.pop(); return nil })
	vm.install(verify.OpNop, func(c *context) error { return nil })

	vm.installOperand(verify.OpLdcI4, 4, func(c *context, op []byte) error {
		c.push(int64(int32(binary.LittleEndian.Uint32(op))))
		return nil
	})
	vm.installOperand(verify.OpLdcI8, 8, func(c *context, op []byte) error {
		c.push(int64(binary.LittleEndian.Uint64(op)))
		return nil
	})
	vm.installOperand(verify.OpLdloc, 4, func(c *context, op []byte) error {
		c.push(c.locals[binary.LittleEndian.Uint32(op)])
		return nil
	})
	vm.installOperand(verify.OpStloc, 4, func(c *context, op []byte) error {
		c.locals[binary.LittleEndian.Uint32(op)] = c.pop()
		return nil
	})
	vm.installOperand(verify.OpLdarg, 4, func(c *context, op []byte) error {
		c.push(c.args[binary.LittleEndian.Uint32(op)])
		return nil
	})
	vm.installOperand(verify.OpStarg, 4, func(c *context, op []byte) error {
		c.args[binary.LittleEndian.Uint32(op)] = c.pop()
		return nil
	})
	vm.install(verify.OpLdnull, func(c *context) error { c.push(0); return nil })

	vm.install(verify.OpRet, func(c *context) error {
		if len(c.stack) > 0 {
			c.ret = c.pop()
		}
		c.halted = true
		return nil
	})

	vm.installBranch(verify.OpBr, func(*context) bool { return true })
	vm.installBranch(verify.OpBrtrue, func(c *context) bool { return c.pop() != 0 })
	vm.installBranch(verify.OpBrfalse, func(c *context) bool { return c.pop() == 0 })
	vm.installBranch(verify.OpBeq, func(c *context) bool { b, a := c.pop(), c.pop(); return a == b })
	vm.installBranch(verify.OpBne, func(c *context) bool { b, a := c.pop(), c.pop(); return a != b })

	return vm
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (vm *VM) install(op verify.Opcode, fn func(*context) error) {
	vm.funcTable[byte(op)] = fn
}

func (vm *VM) installOperand(op verify.Opcode, _ int, fn func(*context, []byte) error) {
	if fn == nil {
		return
	}
	vm.funcTable[byte(op)] = func(c *context) error {
		_, operand, _ := c.buf.At(ilbuf.Index(c.pc))
		return fn(c, operand)
	}
}

// installBranch wires a branch-family opcode: its 8-byte operand is the
// target instruction index (spec.md's buffer stores branch targets at
// instruction granularity, matching ilbuf's own addressing), and taken
// decides whether pc jumps there.
func (vm *VM) installBranch(op verify.Opcode, taken func(*context) bool) {
	vm.funcTable[byte(op)] = func(c *context) error {
		_, operand, _ := c.buf.At(ilbuf.Index(c.pc))
		target := int(int64(binary.LittleEndian.Uint64(operand)))
		if taken(c) {
			c.pc = target - 1 // loop increments pc by one after each step
		}
		return nil
	}
}

// Finalize implements Host: it closes over buf and returns a Delegate
// that replays it from scratch on every call.
func (vm *VM) Finalize(buf *ilbuf.Buffer, sig verify.MethodSignature, numLocals int) (Delegate, error) {
	return func(args ...int64) (int64, error) {
		if len(args) != len(sig.Params) {
			return 0, fmt.Errorf("hostvm: expected %d argument(s), got %d", len(sig.Params), len(args))
		}
		c := &context{buf: buf, args: append([]int64(nil), args...), locals: make([]int64, numLocals)}
		for !c.halted {
			if c.pc >= buf.Len() {
				break
			}
			opcode, _, ok := buf.At(ilbuf.Index(c.pc))
			if !ok {
				break
			}
			handler := vm.funcTable[opcode]
			if handler == nil {
				return 0, ErrUnsupportedOpcode(opcode)
			}
			if err := handler(c); err != nil {
				return 0, err
			}
			c.pc++
		}
		return c.ret, nil
	}, nil
}
