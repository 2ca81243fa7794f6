package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libsovereign-go/factory"
	"github.com/bitfsorg/libsovereign-go/reserve"
)

var cmdFactory = &cobra.Command{
	Use:   "factory",
	Short: "Manage the sovereign coin factory",
}

var cmdFactoryInit = &cobra.Command{
	Use:   "init",
	Short: "Initialize the factory with the current identity as admin",
	Args:  cobra.NoArgs,
	Run:   initFactory,
}

var cmdFactoryShow = &cobra.Command{
	Use:   "show",
	Short: "Print the factory record",
	Args:  cobra.NoArgs,
	Run:   showFactory,
}

var cmdFactoryGlobalReserve = &cobra.Command{
	Use:   "global-reserve [fiat mint]",
	Short: "Create the shared fiat reserve account",
	Args:  cobra.ExactArgs(1),
	Run:   setupGlobalReserve,
}

var cmdBond = &cobra.Command{
	Use:   "bond",
	Short: "Manage the bond registry",
}

var cmdBondRegister = &cobra.Command{
	Use:   "register [currency] [bond mint] [rating]",
	Short: "Map a fiat currency to an approved bond mint",
	Args:  cobra.ExactArgs(3),
	Run:   registerBond,
}

var flagFactoryInit struct {
	MinFiatReserveBps uint16
	BondNumerator     uint8
	BondDenominator   uint8
	ProtocolShare     uint16
	IssuerShare       uint16
	HoldersShare      uint16
}

func init() {
	cmdMain.AddCommand(cmdFactory, cmdBond)
	cmdFactory.AddCommand(cmdFactoryInit, cmdFactoryShow, cmdFactoryGlobalReserve)
	cmdBond.AddCommand(cmdBondRegister)

	f := cmdFactoryInit.Flags()
	f.Uint16Var(&flagFactoryInit.MinFiatReserveBps, "min-fiat-reserve", 2000, "Minimum fiat reserve in basis points")
	f.Uint8Var(&flagFactoryInit.BondNumerator, "bond-numerator", 30, "Bond reserve multiplier numerator")
	f.Uint8Var(&flagFactoryInit.BondDenominator, "bond-denominator", 9, "Bond reserve multiplier denominator")
	f.Uint16Var(&flagFactoryInit.ProtocolShare, "protocol-share", 1000, "Protocol yield share in basis points")
	f.Uint16Var(&flagFactoryInit.IssuerShare, "issuer-share", 2000, "Issuer yield share in basis points")
	f.Uint16Var(&flagFactoryInit.HoldersShare, "holders-share", 7000, "Holders yield share in basis points")
}

func initFactory(*cobra.Command, []string) {
	caller := identity()
	e := openEnv()
	defer e.Close()

	_, err := e.eng.InitializeFactory(context.Background(), caller, factory.Params{
		MinFiatReserveBps:    flagFactoryInit.MinFiatReserveBps,
		BondReserveNumerator: flagFactoryInit.BondNumerator,
		BondReserveDenom:     flagFactoryInit.BondDenominator,
		YieldShareProtocol:   flagFactoryInit.ProtocolShare,
		YieldShareIssuer:     flagFactoryInit.IssuerShare,
		YieldShareHolders:    flagFactoryInit.HoldersShare,
	})
	check(err)
	fmt.Printf("Factory %s initialized (admin %s)\n", e.eng.FactoryAddress(), caller)
}

func showFactory(*cobra.Command, []string) {
	e := openEnv()
	defer e.Close()

	f, err := e.eng.Factory(context.Background())
	check(err)

	fmt.Printf("Address:            %s\n", e.eng.FactoryAddress())
	fmt.Printf("Authority:          %s\n", f.Authority)
	fmt.Printf("Treasury:           %s\n", f.Treasury)
	fmt.Printf("Min fiat reserve:   %s\n", reserve.FormatBps(int64(f.MinFiatReserveBps)))
	fmt.Printf("Bond multiplier:    %d/%d\n", f.BondReserveNumerator, f.BondReserveDenom)
	fmt.Printf("Yield split:        protocol %s, issuer %s, holders %s\n",
		reserve.FormatBps(int64(f.YieldShareProtocol)),
		reserve.FormatBps(int64(f.YieldShareIssuer)),
		reserve.FormatBps(int64(f.YieldShareHolders)))
	fmt.Printf("Transfer fee:       %s (max %d)\n", reserve.FormatBps(int64(f.TransferFeeBps)), f.MaximumTransferFee)
	if !f.ProtocolVault.IsZero() {
		fmt.Printf("Protocol vault:     %s\n", f.ProtocolVault)
	}
	if !f.GlobalFiatReserve.IsZero() {
		fmt.Printf("Global reserve:     %s (mint %s)\n", f.GlobalFiatReserve, f.GlobalFiatMint)
	}
	fmt.Printf("Sovereign coins:    %d\n", f.TotalSovereignCoins)
	fmt.Printf("Total supply:       %d\n", f.TotalSupplyAllCoins)

	mappings := f.Mappings()
	if len(mappings) == 0 {
		return
	}
	fmt.Println("Bond mappings:")
	for _, m := range mappings {
		required, err := f.RequiredReserve(m.BondRating)
		check(err)
		fmt.Printf("  %-8s %s rating %d, reserve %s\n", m.Currency(), m.BondMint, m.BondRating, reserve.FormatBps(int64(required)))
	}
}

func setupGlobalReserve(_ *cobra.Command, args []string) {
	caller := identity()
	fiatMint := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	addr, err := e.eng.SetupGlobalFiatReserve(context.Background(), caller, fiatMint)
	check(err)
	fmt.Printf("Global fiat reserve: %s\n", addr)
}

func registerBond(_ *cobra.Command, args []string) {
	caller := identity()
	bondMint := parseAddr(args[1])
	rating := parseUint8(args[2], "rating")
	e := openEnv()
	defer e.Close()

	m, err := e.eng.RegisterBondMaps(context.Background(), caller, args[0], bondMint, rating)
	check(err)
	fmt.Printf("Registered %s -> %s (rating %d)\n", m.Currency(), m.BondMint, m.BondRating)
}
