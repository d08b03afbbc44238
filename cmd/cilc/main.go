// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cilc is a small demonstration CLI for the ilemit verifier: it
// parses a toy textual instruction script, feeds it through
// ilemit.Emitter, and either reports the verification failure or runs
// the resulting delegate. Grounded on cmd/wasm-run's "read a file, verify
// it, run it" shape in the teacher, using github.com/urfave/cli/v2 and
// github.com/sirupsen/logrus for the CLI surface the library itself
// doesn't need.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/go-cil/ilemit/ildisasm"
	"github.com/go-cil/ilemit/reflectil"
)

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:  "cilc",
		Usage: "verify and run a toy CIL instruction script",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable verbose logging"},
			&cli.BoolFlag{Name: "disasm", Aliases: []string{"d"}, Usage: "print the verified instruction buffer instead of running it"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			if c.NArg() < 1 {
				return cli.Exit("usage: cilc <script.cil>", 1)
			}
			return run(c.Args().First(), c.Bool("disasm"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("cilc failed")
	}
}

func run(path string, disasm bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()

	retType := &reflectil.SimpleType{TypeName: "System.Int32", ValueType: true}
	e, delegate, err := compileScript(f, retType)
	if err != nil {
		log.WithError(err).Error("verification failed")
		return err
	}

	if disasm {
		for _, line := range ildisasm.Disassemble(e.Buffer()) {
			fmt.Println(line)
		}
		return nil
	}

	result, err := delegate()
	if err != nil {
		log.WithError(err).Error("execution failed")
		return err
	}

	log.WithField("result", result).Info("script ran")
	fmt.Println(result)
	return nil
}
