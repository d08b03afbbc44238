// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/go-cil/ilemit/reflectil"
)

// LocalID identifies a local variable or parameter slot within a
// Verifier instance.
type LocalID uint32

// Local is a parameter or local-variable slot: created at method start
// (parameters) or on demand (DeclareLocal), per spec.md §3.
type Local struct {
	id       LocalID
	uid      uuid.UUID
	declared reflectil.Type
	name     string
	isArg    bool
	owner    *Verifier
}

func (l Local) String() string {
	kind := "local"
	if l.isArg {
		kind = "arg"
	}
	if l.name != "" {
		return fmt.Sprintf("%s %s", kind, l.name)
	}
	return fmt.Sprintf("%s%d", kind, l.id)
}

func (v *Verifier) checkLocalOwner(l Local) error {
	if l.owner != v {
		return v.fail("OwnershipError", OwnershipError{Token: l.String()})
	}
	return nil
}

// DeclareLocal creates a new local-variable slot of the given type.
func (v *Verifier) DeclareLocal(t reflectil.Type, name string) (Local, error) {
	if t == nil {
		return Local{}, v.fail("ArgumentNull", ArgumentNullError{Param: "type"})
	}
	l := Local{id: LocalID(len(v.locals)), uid: uuid.New(), declared: t, name: name, owner: v}
	v.locals = append(v.locals, l)
	return l, nil
}

// Param returns the i-th parameter slot declared by the method
// signature the Verifier was constructed with.
func (v *Verifier) Param(i int) (Local, error) {
	if i < 0 || i >= len(v.args) {
		return Local{}, v.fail("InvalidOperation", InvalidOperationError{Reason: fmt.Sprintf("no parameter %d", i)})
	}
	return v.args[i], nil
}
