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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/internal/morphapi"
	"github.com/probechain/go-morph/morph"
	"github.com/probechain/go-morph/morphclient"
	ledger "github.com/probechain/go-morph/programs/morph"
	"github.com/probechain/go-morph/programs/oracle"
	"gopkg.in/urfave/cli.v1"
)

var (
	initTokenCommand = cli.Command{
		Action:   initToken,
		Name:     "init-token",
		Usage:    "Create the token mint",
		Flags:    []cli.Flag{walletFlag},
		Category: "LEDGER COMMANDS",
		Description: `
Creates the token mint. Running it against a ledger whose mint already exists
is reported and not treated as an error.`,
	}
	initAgentCommand = cli.Command{
		Action:   initAgent,
		Name:     "init-agent",
		Usage:    "Create the agent of a wallet",
		Flags:    []cli.Flag{walletFlag, retriesFlag},
		Category: "LEDGER COMMANDS",
		Description: `
Allocates the next agent slot to the wallet and binds the slot's oracle
context to the new agent. Allocations that lose the race for a slot are
retried with the next one.`,
	}
	interactCommand = cli.Command{
		Action:    interact,
		Name:      "interact",
		Usage:     "Send a prompt to the wallet's agent",
		ArgsUsage: "<prompt>",
		Flags:     []cli.Flag{walletFlag},
		Category:  "LEDGER COMMANDS",
	}
	respondCommand = cli.Command{
		Action:    respond,
		Name:      "respond",
		Usage:     "Answer a wallet's pending interaction as the oracle responder",
		ArgsUsage: "<user wallet> <response>",
		Flags:     []cli.Flag{walletFlag},
		Category:  "LEDGER COMMANDS",
		Description: `
Submits the oracle callback for the pending interaction of the user wallet.
--wallet must be the responder the ledger was created with.`,
	}
	airdropCommand = cli.Command{
		Action:   airdrop,
		Name:     "airdrop",
		Usage:    "Credit lamports to a wallet from the development faucet",
		Flags:    []cli.Flag{walletFlag, lamportsFlag},
		Category: "LEDGER COMMANDS",
	}
	agentCommand = cli.Command{
		Action:    showAgent,
		Name:      "agent",
		Usage:     "Show the agent of a wallet",
		ArgsUsage: "<wallet>",
		Category:  "QUERY COMMANDS",
	}
	interactionCommand = cli.Command{
		Action:    showInteraction,
		Name:      "interaction",
		Usage:     "Show the latest interaction of a wallet",
		ArgsUsage: "<wallet>",
		Category:  "QUERY COMMANDS",
	}
	counterCommand = cli.Command{
		Action:   showCounter,
		Name:     "counter",
		Usage:    "Show the next agent slot",
		Category: "QUERY COMMANDS",
	}
	accountCommand = cli.Command{
		Action:    showAccount,
		Name:      "account",
		Usage:     "Show a raw account",
		ArgsUsage: "<address>",
		Category:  "QUERY COMMANDS",
	}
	serveCommand = cli.Command{
		Action:   serve,
		Name:     "serve",
		Usage:    "Run a ledger node serving the JSON-RPC API",
		Flags:    httpFlags,
		Category: "NODE COMMANDS",
	}
)

// backend is a ledger a command runs against, local or remote.
type backend struct {
	morphclient.Backend
	close func()
}

// openBackend dials --rpc if given, and opens the local ledger otherwise.
func openBackend(ctx *cli.Context) (*backend, error) {
	if url := ctx.GlobalString(rpcFlag.Name); url != "" {
		b, err := morphclient.Dial(url)
		if err != nil {
			return nil, err
		}
		return &backend{Backend: b, close: b.Close}, nil
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Morph.DataDir == "" {
		log.Warn("No --datadir given, changes are discarded on exit")
	}
	node, err := morph.New(&cfg.Morph)
	if err != nil {
		return nil, err
	}
	return &backend{Backend: node.Ledger(), close: func() { node.Close() }}, nil
}

func parseAddress(name, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, fmt.Errorf("%s not specified", name)
	}
	addr, err := common.Base58ToAddress(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %v", name, err)
	}
	return addr, nil
}

// withClient runs fn with a client paying from --wallet.
func withClient(ctx *cli.Context, fn func(*morphclient.Client) error) error {
	payer, err := parseAddress("--"+walletFlag.Name, ctx.String(walletFlag.Name))
	if err != nil {
		return err
	}
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.close()
	c, err := morphclient.New(b.Backend, payer)
	if err != nil {
		return err
	}
	return fn(c)
}

// withBackend runs fn against the ledger, for read-only commands.
func withBackend(ctx *cli.Context, fn func(morphclient.Backend) error) error {
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.close()
	return fn(b.Backend)
}

func walletArg(ctx *cli.Context) (common.Address, error) {
	if ctx.NArg() < 1 {
		return common.Address{}, errors.New("wallet argument required")
	}
	return parseAddress("wallet", ctx.Args().First())
}

func initToken(ctx *cli.Context) error {
	return withClient(ctx, func(c *morphclient.Client) error {
		receipt, created, err := c.InitializeToken(context.Background())
		if err != nil {
			printFailure(receipt, err)
			return err
		}
		if !created {
			fmt.Fprintln(stdout, warnColor("Token mint already initialized"))
		} else {
			printReceipt(receipt)
		}
		addr, _ := ledger.MintAddress()
		fmt.Fprintln(stdout, "Mint:", addr)
		return nil
	})
}

func initAgent(ctx *cli.Context) error {
	return withClient(ctx, func(c *morphclient.Client) error {
		c.SetMaxRetries(ctx.Int(retriesFlag.Name))
		alloc, err := c.InitializeAgent(context.Background())
		if err != nil {
			printFailure(nil, err)
			return err
		}
		printReceipt(alloc.Receipt)
		printTable([]string{"Slot", "Agent", "Context"}, [][]string{
			{fmt.Sprint(alloc.Slot), alloc.Agent.String(), alloc.Context.String()},
		})
		return nil
	})
}

func interact(ctx *cli.Context) error {
	prompt := strings.Join(ctx.Args(), " ")
	if err := common.ValidateStringLen(prompt, oracle.MaxPromptLen, "prompt"); err != nil {
		return err
	}
	return withClient(ctx, func(c *morphclient.Client) error {
		receipt, err := c.Interact(context.Background(), prompt)
		if err != nil {
			printFailure(receipt, err)
			return err
		}
		printReceipt(receipt)
		return nil
	})
}

func respond(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return errors.New("user wallet and response required")
	}
	user, err := parseAddress("user wallet", ctx.Args().First())
	if err != nil {
		return err
	}
	response := strings.Join(ctx.Args().Tail(), " ")
	if err := common.ValidateStringLen(response, oracle.MaxResponseLen, "response"); err != nil {
		return err
	}
	return withClient(ctx, func(c *morphclient.Client) error {
		receipt, err := c.Respond(context.Background(), user, response)
		if err != nil {
			printFailure(receipt, err)
			return err
		}
		printReceipt(receipt)
		return nil
	})
}

func airdrop(ctx *cli.Context) error {
	lamports := ctx.Uint64(lamportsFlag.Name)
	if lamports == 0 {
		return fmt.Errorf("--%s required", lamportsFlag.Name)
	}
	return withClient(ctx, func(c *morphclient.Client) error {
		receipt, err := c.Airdrop(context.Background(), lamports)
		if err != nil {
			return err
		}
		printReceipt(receipt)
		balance, err := c.Balance()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Balance:", balance)
		return nil
	})
}

func showAgent(ctx *cli.Context) error {
	wallet, err := walletArg(ctx)
	if err != nil {
		return err
	}
	return withBackend(ctx, func(b morphclient.Backend) error {
		agent, err := ledger.FetchAgent(b, wallet)
		if err != nil {
			return err
		}
		addr, _ := ledger.AgentAddress(wallet)
		printTable([]string{"Field", "Value"}, [][]string{
			{"Address", addr.String()},
			{"Name", agent.Name},
			{"Context", agent.Context.String()},
			{"Happiness", fmt.Sprint(agent.Happiness)},
			{"Energy", fmt.Sprint(agent.Energy)},
			{"Health", fmt.Sprint(agent.Health)},
			{"Individual", fmt.Sprint(agent.Individual)},
		})
		return nil
	})
}

func showInteraction(ctx *cli.Context) error {
	wallet, err := walletArg(ctx)
	if err != nil {
		return err
	}
	return withBackend(ctx, func(b morphclient.Backend) error {
		interaction, err := ledger.FetchInteraction(b, wallet)
		if err != nil {
			return err
		}
		printTable([]string{"Field", "Value"}, [][]string{
			{"Address", ledger.InteractionAddress(wallet, interaction.Context).String()},
			{"Context", interaction.Context.String()},
			{"Status", interaction.Status.String()},
			{"Prompt", interaction.Prompt},
			{"Response", interaction.Response},
		})
		return nil
	})
}

func showCounter(ctx *cli.Context) error {
	return withBackend(ctx, func(b morphclient.Backend) error {
		count, err := ledger.ReadCounter(b)
		if err != nil {
			return err
		}
		addr, _ := ledger.CounterAddress()
		printTable([]string{"Counter", "Next slot", "Next context"}, [][]string{
			{addr.String(), fmt.Sprint(count), ledger.ContextAddress(count).String()},
		})
		return nil
	})
}

func showAccount(ctx *cli.Context) error {
	addr, err := walletArg(ctx)
	if err != nil {
		return err
	}
	return withBackend(ctx, func(b morphclient.Backend) error {
		acct, err := b.Account(addr)
		if err != nil {
			return err
		}
		if acct == nil {
			return fmt.Errorf("account %s not found", addr)
		}
		printTable([]string{"Field", "Value"}, [][]string{
			{"Lamports", fmt.Sprint(acct.Lamports)},
			{"Owner", acct.Owner.String()},
			{"Executable", fmt.Sprint(acct.Executable)},
			{"Data", fmt.Sprintf("%d bytes", len(acct.Data))},
		})
		return nil
	})
}

// serve runs a ledger node with the JSON-RPC API until interrupted.
func serve(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	node, err := morph.New(&cfg.Morph)
	if err != nil {
		return err
	}
	defer node.Close()

	srv, err := morphapi.New(cfg.API, node.APIBackend)
	if err != nil {
		return err
	}
	if _, err := srv.Start(); err != nil {
		return err
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	<-sigc
	log.Info("Got interrupt, shutting down...")

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdown)
}
