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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/naoina/toml"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/internal/morphapi"
	"github.com/probechain/go-morph/morph/morphconfig"
	"gopkg.in/urfave/cli.v1"
)

var dumpConfigCommand = cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "[file]",
	Flags:       httpFlags,
	Category:    "MISCELLANEOUS COMMANDS",
	Description: `The dumpconfig command shows configuration values.`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type morphConfig struct {
	Morph morphconfig.Config
	API   morphapi.Config
}

func defaultConfig() morphConfig {
	cfg := morphConfig{
		Morph: morphconfig.Defaults,
		API:   morphapi.DefaultConfig,
	}
	cfg.API.CorsOrigins = append([]string(nil), morphapi.DefaultConfig.CorsOrigins...)
	return cfg
}

func loadConfig(file string, cfg *morphConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration file, if any, and applies the flags on
// top of it.
func makeConfig(ctx *cli.Context) (morphConfig, error) {
	cfg := defaultConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyNodeFlags(ctx, &cfg.Morph); err != nil {
		return cfg, err
	}
	applyHTTPFlags(ctx, &cfg.API)
	return cfg, nil
}

func applyNodeFlags(ctx *cli.Context, cfg *morphconfig.Config) error {
	if ctx.GlobalIsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(cacheFlag.Name) {
		cfg.DatabaseCache = ctx.GlobalInt(cacheFlag.Name)
	}
	if ctx.GlobalIsSet(parallelismFlag.Name) {
		cfg.Parallelism = ctx.GlobalInt(parallelismFlag.Name)
	}
	if ctx.GlobalIsSet(responderFlag.Name) {
		addr, err := common.Base58ToAddress(ctx.GlobalString(responderFlag.Name))
		if err != nil {
			return fmt.Errorf("--%s: %v", responderFlag.Name, err)
		}
		cfg.Responder = addr
	}
	return nil
}

func applyHTTPFlags(ctx *cli.Context, cfg *morphapi.Config) {
	if ctx.IsSet(httpAddrFlag.Name) {
		cfg.Addr = ctx.String(httpAddrFlag.Name)
	}
	if ctx.IsSet(httpCorsFlag.Name) {
		cfg.CorsOrigins = splitAndTrim(ctx.String(httpCorsFlag.Name))
	}
	if ctx.IsSet(httpRateFlag.Name) {
		cfg.RateLimit = ctx.Float64(httpRateFlag.Name)
	}
	if ctx.IsSet(httpProxiesFlag.Name) {
		cfg.TrustedProxies = splitAndTrim(ctx.String(httpProxiesFlag.Name))
	}
	if ctx.IsSet(faucetFlag.Name) {
		cfg.Airdrop = ctx.Bool(faucetFlag.Name)
	}
	if ctx.IsSet(respondFlag.Name) {
		cfg.Respond = ctx.Bool(respondFlag.Name)
	}
}

// splitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func splitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

func writeConfig(w io.Writer, cfg *morphConfig) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	if len(cfg.Morph.Funded) > 0 {
		io.WriteString(w, "# Note: changing Funded on a seeded database is rejected at startup.\n\n")
	}
	_, err = w.Write(out)
	return err
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	return writeConfig(dump, &cfg)
}
