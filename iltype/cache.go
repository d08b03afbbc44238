// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iltype

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/go-cil/ilemit/reflectil"
)

// Cache memoizes Get(T) against a reflected type's name, so repeated
// canonicalization of the same CLR type during verification of a large
// method body is a single cache lookup.
// It is read-only from the caller's perspective after construction: a
// verifier that never configures one simply calls Get directly, exactly
// as spec.md describes the cache as an optional optimization.
type Cache struct {
	types *lru.Cache
}

// DefaultCacheSize is a reasonable per-verifier-instance cache size: most
// method bodies reference a few dozen distinct types at most.
const DefaultCacheSize = 256

// NewCache builds a Cache with room for size distinct type entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{types: c}, nil
}

// Get is Get(T), memoized. Safe to share across goroutines only to the
// extent the underlying golang-lru.Cache is (it guards its own mutex);
// a single verifier instance is single-threaded per spec.md §5, so a
// Cache is never contended in the library's own usage.
func (c *Cache) Get(t reflectil.Type) StackType {
	if c == nil {
		return Get(t)
	}
	if v, ok := c.types.Get(t.Name()); ok {
		return v.(StackType)
	}
	st := Get(t)
	c.types.Add(t.Name(), st)
	return st
}
