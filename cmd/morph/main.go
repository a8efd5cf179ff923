// Copyright 2024 The go-morph Authors
// This file is part of the go-morph library.
//
// The go-morph library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-morph library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-morph library. If not, see <http://www.gnu.org/licenses/>.

// morph is the command line interface of the morph ledger.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/probechain/go-morph/params"
	"gopkg.in/urfave/cli.v1"
)

var (
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""

	app = newApp()
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "morph"
	app.Usage = "the morph agent ledger command line interface"
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Flags = append(append([]cli.Flag{rpcFlag}, nodeFlags...), logFlags...)
	app.Commands = []cli.Command{
		initTokenCommand,
		initAgentCommand,
		interactCommand,
		respondCommand,
		agentCommand,
		interactionCommand,
		counterCommand,
		accountCommand,
		airdropCommand,
		serveCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		return setupLogging(ctx, os.Stderr)
	}
	return app
}

// setupLogging installs the root log handler according to the logging flags.
func setupLogging(ctx *cli.Context, w io.Writer) error {
	var handler log.Handler
	if ctx.GlobalBool(logJSONFlag.Name) {
		handler = log.StreamHandler(w, log.JSONFormat())
	} else {
		usecolor := false
		if f, ok := w.(*os.File); ok {
			usecolor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
			if usecolor {
				w = colorable.NewColorable(f)
			}
		}
		handler = log.StreamHandler(w, log.TerminalFormat(usecolor))
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(log.Lvl(ctx.GlobalInt(verbosityFlag.Name)))
	if err := glogger.Vmodule(ctx.GlobalString(vmoduleFlag.Name)); err != nil {
		return fmt.Errorf("--%s: %v", vmoduleFlag.Name, err)
	}
	log.Root().SetHandler(glogger)
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
