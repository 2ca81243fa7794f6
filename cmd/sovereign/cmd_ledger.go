package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libsovereign-go/ledger"
)

// The ledger commands seed local state for development networks.
var cmdLedger = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and seed the local token ledger",
}

var cmdLedgerMintCreate = &cobra.Command{
	Use:   "mint-create [mint]",
	Short: "Create a token mint owned by the current identity",
	Args:  cobra.ExactArgs(1),
	Run:   createLedgerMint,
}

var cmdLedgerAccountCreate = &cobra.Command{
	Use:   "account-create [owner] [mint]",
	Short: "Create the token account of owner for mint",
	Args:  cobra.ExactArgs(2),
	Run:   createLedgerAccount,
}

var cmdLedgerMintTo = &cobra.Command{
	Use:   "mint-to [mint] [account] [amount]",
	Short: "Mint tokens into an account",
	Args:  cobra.ExactArgs(3),
	Run:   mintTo,
}

var cmdLedgerTransfer = &cobra.Command{
	Use:   "transfer [source] [destination] [amount]",
	Short: "Transfer tokens owned by the current identity",
	Args:  cobra.ExactArgs(3),
	Run:   transfer,
}

var cmdLedgerAirdrop = &cobra.Command{
	Use:   "airdrop [owner] [amount]",
	Short: "Credit native funds",
	Args:  cobra.ExactArgs(2),
	Run:   airdrop,
}

var cmdLedgerBalance = &cobra.Command{
	Use:   "balance [address]",
	Short: "Print native and token balances of an address",
	Args:  cobra.ExactArgs(1),
	Run:   balance,
}

var cmdLedgerExport = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the ledger as JSON",
	Args:  cobra.ExactArgs(1),
	Run:   exportLedger,
}

var flagMintCreate struct {
	Decimals     uint8
	InterestRate int16
	TransferFee  bool
}

func init() {
	cmdMain.AddCommand(cmdLedger)
	cmdLedger.AddCommand(
		cmdLedgerMintCreate,
		cmdLedgerAccountCreate,
		cmdLedgerMintTo,
		cmdLedgerTransfer,
		cmdLedgerAirdrop,
		cmdLedgerBalance,
		cmdLedgerExport,
	)

	cmdLedgerMintCreate.Flags().Uint8Var(&flagMintCreate.Decimals, "decimals", 6, "Mint decimals")
	cmdLedgerMintCreate.Flags().Int16Var(&flagMintCreate.InterestRate, "interest-rate", 0, "Enable the interest extension at this rate in basis points")
	cmdLedgerMintCreate.Flags().BoolVar(&flagMintCreate.TransferFee, "transfer-fee", false, "Enable the transfer fee extension")
}

func createLedgerMint(cmd *cobra.Command, args []string) {
	caller := identity()
	mint := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	spec := ledger.MintSpec{
		Decimals:      flagMintCreate.Decimals,
		MintAuthority: caller,
		TransferFee:   flagMintCreate.TransferFee,
	}
	if cmd.Flags().Changed("interest-rate") {
		spec.InterestRate = &flagMintCreate.InterestRate
	}
	check(e.eng.UpdateLedger(context.Background(), "ledger_mint_create", func(tx *ledger.Tx) error {
		return tx.CreateMint(mint, spec)
	}))
	fmt.Printf("Mint %s created\n", mint)
}

func createLedgerAccount(_ *cobra.Command, args []string) {
	owner, mint := parseAddr(args[0]), parseAddr(args[1])
	e := openEnv()
	defer e.Close()

	addr := e.eng.TokenAccountAddress(owner, mint)
	check(e.eng.UpdateLedger(context.Background(), "ledger_account_create", func(tx *ledger.Tx) error {
		return tx.CreateAccount(addr, owner, mint)
	}))
	fmt.Printf("Token account: %s\n", addr)
}

func mintTo(_ *cobra.Command, args []string) {
	caller := identity()
	mint, dest := parseAddr(args[0]), parseAddr(args[1])
	amount := parseUint64(args[2], "amount")
	e := openEnv()
	defer e.Close()

	check(e.eng.UpdateLedger(context.Background(), "ledger_mint_to", func(tx *ledger.Tx) error {
		return tx.MintTo(mint, dest, amount, caller)
	}))
	fmt.Printf("Minted %d to %s\n", amount, dest)
}

func transfer(_ *cobra.Command, args []string) {
	caller := identity()
	src, dst := parseAddr(args[0]), parseAddr(args[1])
	amount := parseUint64(args[2], "amount")
	e := openEnv()
	defer e.Close()

	var fee uint64
	check(e.eng.UpdateLedger(context.Background(), "ledger_transfer", func(tx *ledger.Tx) (err error) {
		fee, err = tx.Transfer(src, dst, amount, caller)
		return err
	}))
	fmt.Printf("Transferred %d (fee withheld %d)\n", amount, fee)
}

func airdrop(_ *cobra.Command, args []string) {
	owner := parseAddr(args[0])
	amount := parseUint64(args[1], "amount")
	e := openEnv()
	defer e.Close()

	if e.cfg.Network == "mainnet" {
		fatalf("airdrop is not available on mainnet")
	}
	check(e.eng.UpdateLedger(context.Background(), "ledger_airdrop", func(tx *ledger.Tx) error {
		return tx.Credit(owner, amount)
	}))
	fmt.Printf("Credited %d to %s\n", amount, owner)
}

func balance(_ *cobra.Command, args []string) {
	addr := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	check(e.ledger.View(func(tx *ledger.Tx) error {
		fmt.Printf("Native: %d\n", tx.NativeBalance(addr))
		acct, err := tx.Account(addr)
		if err != nil {
			return nil
		}
		fmt.Printf("Token:  %d of mint %s (withheld %d, owner %s)\n", acct.Amount, acct.Mint, acct.Withheld, acct.Owner)
		return nil
	}))
}

func exportLedger(_ *cobra.Command, args []string) {
	e := openEnv()
	defer e.Close()

	data, err := e.ledger.Snapshot()
	check(err)
	checkf(os.MkdirAll(filepath.Dir(args[0]), 0700), "create export directory")
	checkf(os.WriteFile(args[0], data, 0600), "write export")
	fmt.Printf("Ledger written to %s\n", args[0])
}
