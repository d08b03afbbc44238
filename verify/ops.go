// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"encoding/binary"
	"math"

	"github.com/go-cil/ilemit/ilbuf"
	"github.com/go-cil/ilemit/iltype"
	"github.com/go-cil/ilemit/reflectil"
)

var numericKinds = map[iltype.Kind]bool{
	iltype.Int32: true, iltype.Int64: true, iltype.NativeInt: true,
	iltype.Float32: true, iltype.Float64: true,
}

// peekTop returns the type currently on top of the stack without
// removing it, for opcodes whose precondition is "pop whatever is
// there" rather than "pop a value of a specific expected type" (dup,
// pop, the unary arithmetic ops).
func (v *Verifier) peekTop() (iltype.StackType, error) {
	top, ok := v.stack.TopN(1)
	if !ok {
		return iltype.StackType{}, v.fail("StackUnderflow", StackUnderflowError{Required: 1, Have: 0})
	}
	return top[0], nil
}

func (v *Verifier) binaryArith(op Opcode) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if !numericKinds[top.Kind] {
		return 0, v.fail("TypeMismatch", TypeMismatchError{Position: 0, Expected: top, Got: top, Opcode: op.String()})
	}
	return v.updateState(op, nil, []iltype.StackType{top, top}, []iltype.StackType{top})
}

// Add, Sub, Mul, Div, Rem pop two operands of the same numeric kind and
// push a result of that kind.
func (v *Verifier) Add() (ilbuf.Index, error) { return v.binaryArith(OpAdd) }
func (v *Verifier) Sub() (ilbuf.Index, error) { return v.binaryArith(OpSub) }
func (v *Verifier) Mul() (ilbuf.Index, error) { return v.binaryArith(OpMul) }
func (v *Verifier) Div() (ilbuf.Index, error) { return v.binaryArith(OpDiv) }
func (v *Verifier) Rem() (ilbuf.Index, error) { return v.binaryArith(OpRem) }

func (v *Verifier) bitwise(op Opcode) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if top.Kind != iltype.Int32 && top.Kind != iltype.Int64 && top.Kind != iltype.NativeInt {
		return 0, v.fail("TypeMismatch", TypeMismatchError{Position: 0, Expected: top, Got: top, Opcode: op.String()})
	}
	return v.updateState(op, nil, []iltype.StackType{top, top}, []iltype.StackType{top})
}

// And, Or, Xor, Shl, Shr pop two integer operands of the same kind and
// push a result of that kind.
func (v *Verifier) And() (ilbuf.Index, error) { return v.bitwise(OpAnd) }
func (v *Verifier) Or() (ilbuf.Index, error)  { return v.bitwise(OpOr) }
func (v *Verifier) Xor() (ilbuf.Index, error) { return v.bitwise(OpXor) }
func (v *Verifier) Shl() (ilbuf.Index, error) { return v.bitwise(OpShl) }
func (v *Verifier) Shr() (ilbuf.Index, error) { return v.bitwise(OpShr) }

// Neg pops one numeric operand and pushes its negation, of the same
// kind.
func (v *Verifier) Neg() (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if !numericKinds[top.Kind] {
		return 0, v.fail("TypeMismatch", TypeMismatchError{Position: 0, Expected: top, Got: top, Opcode: OpNeg.String()})
	}
	return v.updateState(OpNeg, nil, []iltype.StackType{top}, []iltype.StackType{top})
}

// compare pops two operands of the same kind and pushes an int32
// (ceq/cgt/clt).
func (v *Verifier) compare(op Opcode) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	return v.updateState(op, nil, []iltype.StackType{top, top}, []iltype.StackType{iltype.TypeInt32})
}

func (v *Verifier) Ceq() (ilbuf.Index, error) { return v.compare(OpCeq) }
func (v *Verifier) Cgt() (ilbuf.Index, error) { return v.compare(OpCgt) }
func (v *Verifier) Clt() (ilbuf.Index, error) { return v.compare(OpClt) }

func (v *Verifier) convert(op Opcode, to iltype.StackType) (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if !numericKinds[top.Kind] {
		return 0, v.fail("TypeMismatch", TypeMismatchError{Position: 0, Expected: top, Got: top, Opcode: op.String()})
	}
	return v.updateState(op, nil, []iltype.StackType{top}, []iltype.StackType{to})
}

func (v *Verifier) ConvI4() (ilbuf.Index, error) { return v.convert(OpConvI4, iltype.TypeInt32) }
func (v *Verifier) ConvI8() (ilbuf.Index, error) { return v.convert(OpConvI8, iltype.TypeInt64) }
func (v *Verifier) ConvR4() (ilbuf.Index, error) { return v.convert(OpConvR4, iltype.TypeFloat32) }
func (v *Verifier) ConvR8() (ilbuf.Index, error) { return v.convert(OpConvR8, iltype.TypeFloat64) }
func (v *Verifier) ConvU() (ilbuf.Index, error)  { return v.convert(OpConvU, iltype.TypeNativeInt) }

// Dup duplicates the top of the stack.
func (v *Verifier) Dup() (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	return v.updateState(OpDup, nil, []iltype.StackType{top}, []iltype.StackType{top, top})
}

// Pop discards the top of the stack, whatever its type.
func (v *Verifier) Pop() (ilbuf.Index, error) {
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	return v.updateState(OpPop, nil, []iltype.StackType{top}, nil)
}

func i32Bytes(i int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(i))
	return b
}

// LoadConstantI4 pushes a 32-bit integer constant.
func (v *Verifier) LoadConstantI4(val int32) (ilbuf.Index, error) {
	return v.updateState(OpLdcI4, i32Bytes(val), nil, []iltype.StackType{iltype.TypeInt32})
}

// LoadConstantI8 pushes a 64-bit integer constant.
func (v *Verifier) LoadConstantI8(val int64) (ilbuf.Index, error) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(val))
	return v.updateState(OpLdcI8, b, nil, []iltype.StackType{iltype.TypeInt64})
}

// LoadConstantR4 pushes a 32-bit float constant.
func (v *Verifier) LoadConstantR4(val float32) (ilbuf.Index, error) {
	return v.updateState(OpLdcR4, i32Bytes(int32(math.Float32bits(val))), nil, []iltype.StackType{iltype.TypeFloat32})
}

// LoadConstantR8 pushes a 64-bit float constant.
func (v *Verifier) LoadConstantR8(val float64) (ilbuf.Index, error) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(val))
	return v.updateState(OpLdcR8, b, nil, []iltype.StackType{iltype.TypeFloat64})
}

// LoadNull pushes the null literal.
func (v *Verifier) LoadNull() (ilbuf.Index, error) {
	return v.updateState(OpLdnull, nil, nil, []iltype.StackType{iltype.TypeNullLiteral})
}

func slotOperand(id uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, id)
	return b
}

// LoadLocal pushes the value held in local l.
func (v *Verifier) LoadLocal(l Local) (ilbuf.Index, error) {
	if err := v.checkLocalOwner(l); err != nil {
		return 0, err
	}
	return v.updateState(OpLdloc, slotOperand(uint32(l.id)), nil, []iltype.StackType{v.lattice(l.declared)})
}

// StoreLocal pops the top of the stack into local l.
func (v *Verifier) StoreLocal(l Local) (ilbuf.Index, error) {
	if err := v.checkLocalOwner(l); err != nil {
		return 0, err
	}
	return v.updateState(OpStloc, slotOperand(uint32(l.id)), []iltype.StackType{v.lattice(l.declared)}, nil)
}

// LoadLocalAddress pushes a managed pointer to local l.
func (v *Verifier) LoadLocalAddress(l Local) (ilbuf.Index, error) {
	if err := v.checkLocalOwner(l); err != nil {
		return 0, err
	}
	return v.updateState(OpLdloca, slotOperand(uint32(l.id)), nil, []iltype.StackType{iltype.PointerTo(l.declared)})
}

// LoadField pushes the value of instance field f; requires a reference
// to f's declaring type on top of the stack.
func (v *Verifier) LoadField(f *reflectil.Field) (ilbuf.Index, error) {
	if f == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "field"})
	}
	return v.updateState(OpLdfld, nil, []iltype.StackType{iltype.RefOf(f.Declaring)}, []iltype.StackType{v.lattice(f.FieldType)})
}

// StoreField pops a value then an instance reference and stores the
// value into that instance's field f.
func (v *Verifier) StoreField(f *reflectil.Field) (ilbuf.Index, error) {
	if f == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "field"})
	}
	pops := []iltype.StackType{v.lattice(f.FieldType), iltype.RefOf(f.Declaring)}
	return v.updateState(OpStfld, nil, pops, nil)
}

// LoadFieldAddress pushes a managed pointer to instance field f.
func (v *Verifier) LoadFieldAddress(f *reflectil.Field) (ilbuf.Index, error) {
	if f == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "field"})
	}
	return v.updateState(OpLdflda, nil, []iltype.StackType{iltype.RefOf(f.Declaring)}, []iltype.StackType{iltype.PointerTo(f.FieldType)})
}

// LoadArg pushes the value of parameter i.
func (v *Verifier) LoadArg(i int) (ilbuf.Index, error) {
	l, err := v.Param(i)
	if err != nil {
		return 0, err
	}
	return v.updateState(OpLdarg, slotOperand(uint32(i)), nil, []iltype.StackType{v.lattice(l.declared)})
}

// StoreArg pops the top of the stack into parameter i.
func (v *Verifier) StoreArg(i int) (ilbuf.Index, error) {
	l, err := v.Param(i)
	if err != nil {
		return 0, err
	}
	return v.updateState(OpStarg, slotOperand(uint32(i)), []iltype.StackType{v.lattice(l.declared)}, nil)
}

// LoadArgAddress pushes a managed pointer to parameter i.
func (v *Verifier) LoadArgAddress(i int) (ilbuf.Index, error) {
	l, err := v.Param(i)
	if err != nil {
		return 0, err
	}
	return v.updateState(OpLdarga, slotOperand(uint32(i)), nil, []iltype.StackType{iltype.PointerTo(l.declared)})
}

// LoadStaticField pushes the value of static field f.
func (v *Verifier) LoadStaticField(f *reflectil.Field) (ilbuf.Index, error) {
	if f == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "field"})
	}
	return v.updateState(OpLdsfld, nil, nil, []iltype.StackType{v.lattice(f.FieldType)})
}

// StoreStaticField pops a value and stores it into static field f.
func (v *Verifier) StoreStaticField(f *reflectil.Field) (ilbuf.Index, error) {
	if f == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "field"})
	}
	return v.updateState(OpStsfld, nil, []iltype.StackType{v.lattice(f.FieldType)}, nil)
}

// callPops builds the expected-pops list (top-to-bottom) for a method
// call: the reversed parameter list, followed by the receiver if the
// method isn't static.
func (v *Verifier) callPops(m *reflectil.Method) []iltype.StackType {
	pops := make([]iltype.StackType, 0, len(m.Params)+1)
	for i := len(m.Params) - 1; i >= 0; i-- {
		pops = append(pops, v.lattice(m.Params[i]))
	}
	if !m.Static {
		pops = append(pops, iltype.RefOf(m.Declaring))
	}
	return pops
}

func (v *Verifier) callPushes(m *reflectil.Method) []iltype.StackType {
	if m.Return == nil {
		return nil
	}
	return []iltype.StackType{v.lattice(m.Return)}
}

// Call emits a non-virtual call to m.
func (v *Verifier) Call(m *reflectil.Method) (ilbuf.Index, error) {
	if m == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "method"})
	}
	return v.updateState(OpCall, nil, v.callPops(m), v.callPushes(m))
}

// CallVirtual emits a virtual dispatch call to m; m must not be static.
func (v *Verifier) CallVirtual(m *reflectil.Method) (ilbuf.Index, error) {
	if m == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "method"})
	}
	if m.Static {
		return 0, v.fail("InvalidOperation", InvalidOperationError{Reason: "call_virtual requires an instance method"})
	}
	return v.updateState(OpCallvirt, nil, v.callPops(m), v.callPushes(m))
}

// CallByName resolves a method by name and exact parameter signature
// before calling it, wrapping an unresolved lookup in NoSuchMethodError.
func (v *Verifier) CallByName(t reflectil.Type, name string, virtual bool, params ...reflectil.Type) (ilbuf.Index, error) {
	m, ok := reflectil.FindMethod(t, name, params)
	if !ok {
		return 0, v.fail("NoSuchMethod", wrapNoSuchMethod(t.Name(), name, reflectil.ParamNames(params)))
	}
	if virtual {
		return v.CallVirtual(m)
	}
	return v.Call(m)
}

// CallIndirect pops a native-int function pointer and sig's parameters
// (in reverse) and pushes sig's return value, for calling through a
// value produced off the stack rather than a statically-known method.
func (v *Verifier) CallIndirect(sig MethodSignature) (ilbuf.Index, error) {
	pops := make([]iltype.StackType, 0, len(sig.Params)+1)
	for i := len(sig.Params) - 1; i >= 0; i-- {
		pops = append(pops, v.lattice(sig.Params[i]))
	}
	pops = append(pops, iltype.TypeNativeInt)
	var pushes []iltype.StackType
	if sig.Return != nil {
		pushes = []iltype.StackType{v.lattice(sig.Return)}
	}
	return v.updateState(OpCallindirect, nil, pops, pushes)
}

// NewArray pops an Int32/NativeInt length and pushes a reference to a
// freshly-constructed array of elemType.
func (v *Verifier) NewArray(elemType reflectil.Type) (ilbuf.Index, error) {
	if elemType == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "elemType"})
	}
	top, err := v.peekTop()
	if err != nil {
		return 0, err
	}
	if !iltype.Assignable(top, iltype.TypeInt32) && !iltype.Assignable(top, iltype.TypeNativeInt) {
		return 0, v.fail("TypeMismatch", TypeMismatchError{Position: 0, Expected: iltype.TypeInt32, Got: top, Opcode: OpNewarr.String()})
	}
	return v.updateState(OpNewarr, nil, []iltype.StackType{top}, []iltype.StackType{iltype.ArrayOf(elemType)})
}

// NewObject pops ctor's formal parameters (top n values, in reverse)
// and pushes a reference to the newly-constructed instance. ctor's
// declaring type must be a reference type.
func (v *Verifier) NewObject(ctor *reflectil.Ctor) (ilbuf.Index, error) {
	if ctor == nil {
		return 0, v.fail("ArgumentNull", ArgumentNullError{Param: "ctor"})
	}
	if ctor.Declaring.IsValueType() {
		return 0, v.fail("InvalidOperation", InvalidOperationError{Reason: "cannot construct value type with new_object"})
	}
	n := len(ctor.Params)
	pops := make([]iltype.StackType, n)
	for i := 0; i < n; i++ {
		pops[i] = v.lattice(ctor.Params[n-1-i])
	}
	return v.updateState(OpNewobj, nil, pops, []iltype.StackType{iltype.RefOf(ctor.Declaring)})
}

// NewObjectByTypes resolves a constructor on t by exact parameter-type
// signature and then calls NewObject, wrapping an unresolved lookup in
// NoSuchConstructorError.
func (v *Verifier) NewObjectByTypes(t reflectil.Type, params ...reflectil.Type) (ilbuf.Index, error) {
	ctor, ok := reflectil.FindCtor(t, params)
	if !ok {
		return 0, v.fail("NoSuchConstructor", wrapNoSuchConstructor(t.Name(), reflectil.ParamNames(params)))
	}
	return v.NewObject(ctor)
}

// Ret pops the method's return type (or requires an empty stack, for
// void) and ends the current reachable path.
func (v *Verifier) Ret() (ilbuf.Index, error) {
	if v.sig.Return == nil {
		if !v.stack.IsRoot() {
			top, _ := v.peekTop()
			return 0, v.fail("InvalidOperation", InvalidOperationError{Reason: "ret from a void method with a non-empty stack (top=" + top.String() + ")"})
		}
		return v.updateState(OpRet, nil, nil, nil)
	}
	want := v.lattice(v.sig.Return)
	return v.updateState(OpRet, nil, []iltype.StackType{want}, nil)
}
