// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ilemit is the public entry point (spec.md C6): Emitter wraps a
// verify.Verifier and adds the one operation the verifier core doesn't
// own, CreateDelegate, which runs the five-point finalizer checklist of
// spec.md §4.8 before handing the instruction buffer to a hostvm.Host.
package ilemit

import (
	"log"

	"github.com/go-cil/ilemit/hostvm"
	"github.com/go-cil/ilemit/iltype"
	"github.com/go-cil/ilemit/verify"
)

// Emitter is a verify.Verifier plus the finalization step. Every
// instruction-surface method (Add, Call, NewObject, Branch, ...) is
// promoted straight through from the embedded *verify.Verifier — Emitter
// itself only adds CreateDelegate, delegate caching, and the fixed-arity
// forwarders in convenience.go.
type Emitter struct {
	*verify.Verifier

	host     hostvm.Host
	delegate hostvm.Delegate
	logger   *log.Logger
}

type config struct {
	cache  *iltype.Cache
	host   hostvm.Host
	logger *log.Logger
}

// Option configures an Emitter at construction time.
type Option func(*config)

// WithCache attaches a shared type-lattice cache to the underlying
// verifier (spec.md §9, "Global/process state").
func WithCache(c *iltype.Cache) Option {
	return func(cfg *config) { cfg.cache = c }
}

// WithHost overrides the host runtime CreateDelegate hands the finished
// buffer to. Defaults to hostvm.New(), the reference interpreter.
func WithHost(h hostvm.Host) Option {
	return func(cfg *config) { cfg.host = h }
}

// WithLogger overrides the *log.Logger CreateDelegate reports finalizer
// decisions to for this Emitter. Defaults to the package-level logger
// gated by PrintDebugInfo.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// New creates an Emitter for a method with the given signature.
func New(sig verify.MethodSignature, opts ...Option) *Emitter {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	var vopts []verify.Option
	if cfg.cache != nil {
		vopts = append(vopts, verify.WithCache(cfg.cache))
	}
	host := cfg.host
	if host == nil {
		host = hostvm.New()
	}
	lg := cfg.logger
	if lg == nil {
		lg = logger
	}
	return &Emitter{Verifier: verify.New(sig, vopts...), host: host, logger: lg}
}
