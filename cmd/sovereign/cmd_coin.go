package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/coin"
	"github.com/bitfsorg/libsovereign-go/engine"
	"github.com/bitfsorg/libsovereign-go/reserve"
)

var cmdCoin = &cobra.Command{
	Use:   "coin",
	Short: "Create and provision sovereign coins",
}

var cmdCoinCreate = &cobra.Command{
	Use:   "create [name] [symbol] [currency]",
	Short: "Create a draft sovereign coin backed by the currency's bond",
	Args:  cobra.ExactArgs(3),
	Run:   createCoin,
}

var cmdCoinSetupMint = &cobra.Command{
	Use:   "setup-mint [coin]",
	Short: "Create the coin's token mint",
	Args:  cobra.ExactArgs(1),
	Run:   setupMint,
}

var cmdCoinSetupAccounts = &cobra.Command{
	Use:   "setup-accounts [coin]",
	Short: "Link the coin's fiat reserve account",
	Args:  cobra.ExactArgs(1),
	Run:   setupAccounts,
}

var cmdCoinBondHolding = &cobra.Command{
	Use:   "bond-holding [coin]",
	Short: "Create the coin's bond holding account",
	Args:  cobra.ExactArgs(1),
	Run:   setupBondHolding,
}

var cmdCoinFinalize = &cobra.Command{
	Use:   "finalize [coin]",
	Short: "Publish metadata and activate the coin",
	Args:  cobra.ExactArgs(1),
	Run:   finalizeCoin,
}

var cmdCoinShow = &cobra.Command{
	Use:   "show [coin]",
	Short: "Print a coin record",
	Args:  cobra.ExactArgs(1),
	Run:   showCoin,
}

var cmdCoinList = &cobra.Command{
	Use:   "list",
	Short: "List all sovereign coins",
	Args:  cobra.NoArgs,
	Run:   listCoins,
}

var cmdCoinInterest = &cobra.Command{
	Use:   "interest [coin]",
	Short: "Update the coin's interest rate from its bond, or set it with --rate",
	Args:  cobra.ExactArgs(1),
	Run:   updateInterest,
}

var flagCoinCreate struct {
	URI string
}

var flagSetupMint struct {
	InterestRate int16
	TransferFee  bool
}

var flagSetupAccounts struct {
	FiatMint string
	Global   bool
}

var flagInterest struct {
	Rate int16
}

func init() {
	cmdMain.AddCommand(cmdCoin)
	cmdCoin.AddCommand(
		cmdCoinCreate,
		cmdCoinSetupMint,
		cmdCoinSetupAccounts,
		cmdCoinBondHolding,
		cmdCoinFinalize,
		cmdCoinShow,
		cmdCoinList,
		cmdCoinInterest,
	)

	cmdCoinCreate.Flags().StringVar(&flagCoinCreate.URI, "uri", "", "Metadata URI")
	cmdCoinSetupMint.Flags().Int16Var(&flagSetupMint.InterestRate, "interest-rate", 0, "Create an interest-bearing mint with this initial rate in basis points")
	cmdCoinSetupMint.Flags().BoolVar(&flagSetupMint.TransferFee, "transfer-fee", false, "Enable the transfer fee extension")
	cmdCoinSetupAccounts.Flags().StringVar(&flagSetupAccounts.FiatMint, "fiat-mint", "", "Fiat mint for a dedicated reserve account")
	cmdCoinSetupAccounts.Flags().BoolVar(&flagSetupAccounts.Global, "global", false, "Use the factory's global fiat reserve")
	cmdCoinInterest.Flags().Int16Var(&flagInterest.Rate, "rate", 0, "Manual rate in basis points")
}

func createCoin(_ *cobra.Command, args []string) {
	caller := identity()
	e := openEnv()
	defer e.Close()

	ctx := context.Background()
	f, err := e.eng.Factory(ctx)
	check(err)
	m, err := f.LookupBondMapping(args[2])
	check(err)

	addr, err := e.eng.InitSovereignCoin(ctx, caller, coin.Params{
		Name:         args[0],
		Symbol:       args[1],
		URI:          flagCoinCreate.URI,
		FiatCurrency: args[2],
	}, m.BondMint)
	check(err)
	fmt.Printf("Sovereign coin %s created\n", addr)
}

func setupMint(cmd *cobra.Command, args []string) {
	caller := identity()
	coinAddr := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	var opts []engine.MintOption
	if flagSetupMint.TransferFee {
		opts = append(opts, engine.WithTransferFee())
	}

	var mint account.Address
	var err error
	ctx := context.Background()
	if cmd.Flags().Changed("interest-rate") {
		mint, err = e.eng.SetupInterestBearingMint(ctx, caller, coinAddr, flagSetupMint.InterestRate, opts...)
	} else {
		mint, err = e.eng.SetupMint(ctx, caller, coinAddr, opts...)
	}
	check(err)
	fmt.Printf("Mint: %s\n", mint)
}

func setupAccounts(_ *cobra.Command, args []string) {
	caller := identity()
	coinAddr := parseAddr(args[0])
	if flagSetupAccounts.Global == (flagSetupAccounts.FiatMint != "") {
		fatalf("exactly one of --fiat-mint or --global is required")
	}

	ta := engine.TokenAccounts{UseGlobalReserve: flagSetupAccounts.Global}
	if flagSetupAccounts.FiatMint != "" {
		ta.FiatMint = parseAddr(flagSetupAccounts.FiatMint)
	}

	e := openEnv()
	defer e.Close()

	addr, err := e.eng.SetupTokenAccounts(context.Background(), caller, coinAddr, ta)
	check(err)
	fmt.Printf("Fiat reserve: %s\n", addr)
}

func setupBondHolding(_ *cobra.Command, args []string) {
	caller := identity()
	coinAddr := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	addr, err := e.eng.SetupBondHolding(context.Background(), caller, coinAddr)
	check(err)
	fmt.Printf("Bond holding: %s\n", addr)
}

func finalizeCoin(_ *cobra.Command, args []string) {
	caller := identity()
	coinAddr := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	check(e.eng.FinalizeSetup(context.Background(), caller, coinAddr))
	fmt.Printf("Sovereign coin %s finalized\n", coinAddr)
}

func showCoin(_ *cobra.Command, args []string) {
	coinAddr := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	c, err := e.eng.Coin(context.Background(), coinAddr)
	check(err)
	printCoin(coinAddr, c)
}

func printCoin(addr account.Address, c *coin.Coin) {
	fmt.Printf("Address:          %s\n", addr)
	fmt.Printf("Name:             %s (%s)\n", c.NameString(), c.SymbolString())
	if uri := c.URIString(); uri != "" {
		fmt.Printf("URI:              %s\n", uri)
	}
	fmt.Printf("Authority:        %s\n", c.Authority)
	fmt.Printf("Phase:            %s\n", c.Phase)
	fmt.Printf("Currency:         %s\n", c.Currency())
	fmt.Printf("Bond:             %s (rating %d)\n", c.BondMint, c.BondRating)
	fmt.Printf("Required reserve: %s\n", reserve.FormatBps(int64(c.RequiredReserveBps)))
	if !c.Mint.IsZero() {
		fmt.Printf("Mint:             %s\n", c.Mint)
	}
	if !c.FiatReserve.IsZero() {
		global := ""
		if c.UsesGlobalReserve {
			global = " (global)"
		}
		fmt.Printf("Fiat reserve:     %s%s\n", c.FiatReserve, global)
	}
	if !c.BondHolding.IsZero() {
		fmt.Printf("Bond holding:     %s\n", c.BondHolding)
	}
	if c.IsInterestBearing {
		fmt.Printf("Interest rate:    %s\n", reserve.FormatBps(int64(c.InterestRate)))
	}
	if c.HasTransferFee {
		fmt.Println("Transfer fee:     enabled")
	}
}

func listCoins(*cobra.Command, []string) {
	e := openEnv()
	defer e.Close()

	recs, err := e.eng.Coins(context.Background())
	check(err)
	if len(recs) == 0 {
		fmt.Println("No sovereign coins")
		return
	}
	for _, r := range recs {
		fmt.Printf("%s  %-10s %-4s %s\n", r.Address, r.Coin.SymbolString(), r.Coin.Currency(), r.Coin.Phase)
	}
}

func updateInterest(cmd *cobra.Command, args []string) {
	caller := identity()
	coinAddr := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	var manual *int16
	if cmd.Flags().Changed("rate") {
		manual = &flagInterest.Rate
	}
	rate, err := e.eng.UpdateInterestRate(context.Background(), caller, coinAddr, manual)
	check(err)
	fmt.Printf("Interest rate: %s\n", reserve.FormatBps(int64(rate)))
}
