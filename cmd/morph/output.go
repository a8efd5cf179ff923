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
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failColor = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()

	stdout io.Writer = os.Stdout
)

func printTable(header []string, rows [][]string) {
	table := tablewriter.NewWriter(stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func printLogs(logs []string) {
	for _, l := range logs {
		fmt.Fprintln(stdout, "  Program log:", l)
	}
}

func printReceipt(receipt *types.Receipt) {
	if receipt == nil {
		return
	}
	fmt.Fprintf(stdout, "%s %s (sequence %d, fee %d)\n", okColor("Committed"), receipt.TxHash, receipt.Sequence, receipt.Fee)
	printLogs(receipt.Logs)
}

// printFailure reports a rejected transaction with the action its error
// class calls for.
func printFailure(receipt *types.Receipt, err error) {
	fmt.Fprintf(stdout, "%s [%s] %v\n", failColor("Failed"), vm.Classify(err), err)
	if receipt != nil {
		printLogs(receipt.Logs)
	}
}
