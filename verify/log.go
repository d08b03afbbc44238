// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"io"
	"log"
	"os"
)

// PrintDebugInfo toggles verbose logging of verifier state transitions.
// Off by default; flip it on when chasing down a rejected instruction
// sequence.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	w := io.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "", log.Lshortfile)
}
