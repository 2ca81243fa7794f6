package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libsovereign-go/reserve"
)

var cmdFees = &cobra.Command{
	Use:   "fees",
	Short: "Configure, harvest and withdraw transfer fees",
}

var cmdFeesInit = &cobra.Command{
	Use:   "init [coin] [bps] [max fee]",
	Short: "Enable the transfer fee on a coin's mint and create the protocol vault",
	Args:  cobra.ExactArgs(3),
	Run:   initTransferFee,
}

var cmdFeesUpdate = &cobra.Command{
	Use:   "update [coin] [bps] [max fee]",
	Short: "Change a coin's transfer fee",
	Args:  cobra.ExactArgs(3),
	Run:   updateTransferFee,
}

var cmdFeesHarvest = &cobra.Command{
	Use:   "harvest [capability] [mint] [account...]",
	Short: "Harvest withheld fees into the mint (all holding accounts if none are given)",
	Args:  cobra.MinimumNArgs(2),
	Run:   harvestFees,
}

var cmdFeesWithdraw = &cobra.Command{
	Use:   "withdraw [capability] [mint]",
	Short: "Withdraw harvested fees into the protocol vault",
	Args:  cobra.ExactArgs(2),
	Run:   withdrawFees,
}

var cmdFeesWithdrawProtocol = &cobra.Command{
	Use:   "withdraw-protocol [capability] [destination] [amount]",
	Short: "Pay out of the protocol vault",
	Args:  cobra.ExactArgs(3),
	Run:   withdrawProtocol,
}

var cmdFeeOperator = &cobra.Command{
	Use:   "fee-operator",
	Short: "Manage fee operator capabilities",
}

var cmdFeeOperatorCreate = &cobra.Command{
	Use:   "create [operator]",
	Short: "Grant an identity the fee operator capability",
	Args:  cobra.ExactArgs(1),
	Run:   createFeeOperator,
}

var cmdFeeOperatorClose = &cobra.Command{
	Use:   "close [capability] [receiver]",
	Short: "Revoke a capability and refund its deposit",
	Args:  cobra.ExactArgs(2),
	Run:   closeFeeOperator,
}

func init() {
	cmdMain.AddCommand(cmdFees, cmdFeeOperator)
	cmdFees.AddCommand(cmdFeesInit, cmdFeesUpdate, cmdFeesHarvest, cmdFeesWithdraw, cmdFeesWithdrawProtocol)
	cmdFeeOperator.AddCommand(cmdFeeOperatorCreate, cmdFeeOperatorClose)
}

func parseBps(s string) uint16 {
	v := parseUint64(s, "bps")
	if v > reserve.BasisPointMax {
		fatalf("bps %d exceeds %d", v, reserve.BasisPointMax)
	}
	return uint16(v)
}

func initTransferFee(_ *cobra.Command, args []string) {
	caller := identity()
	coinAddr := parseAddr(args[0])
	bps, maxFee := parseBps(args[1]), parseUint64(args[2], "max fee")
	e := openEnv()
	defer e.Close()

	vault, err := e.eng.InitializeTransferFee(context.Background(), caller, coinAddr, bps, maxFee)
	check(err)
	fmt.Printf("Transfer fee %s (max %d), vault %s\n", reserve.FormatBps(int64(bps)), maxFee, vault)
}

func updateTransferFee(_ *cobra.Command, args []string) {
	caller := identity()
	coinAddr := parseAddr(args[0])
	bps, maxFee := parseBps(args[1]), parseUint64(args[2], "max fee")
	e := openEnv()
	defer e.Close()

	check(e.eng.UpdateTransferFee(context.Background(), caller, coinAddr, bps, maxFee))
	fmt.Printf("Transfer fee %s (max %d)\n", reserve.FormatBps(int64(bps)), maxFee)
}

func harvestFees(_ *cobra.Command, args []string) {
	caller := identity()
	capability, mint := parseAddr(args[0]), parseAddr(args[1])
	accounts := parseAddrs(args[2:])
	e := openEnv()
	defer e.Close()

	ctx := context.Background()
	if len(accounts) == 0 {
		var err error
		accounts, err = e.eng.HarvestableAccounts(ctx, mint)
		check(err)
	}
	amount, err := e.eng.HarvestFees(ctx, caller, capability, mint, accounts)
	check(err)
	fmt.Printf("Harvested %d from %d accounts\n", amount, len(accounts))
}

func withdrawFees(_ *cobra.Command, args []string) {
	caller := identity()
	capability, mint := parseAddr(args[0]), parseAddr(args[1])
	e := openEnv()
	defer e.Close()

	amount, err := e.eng.WithdrawFees(context.Background(), caller, capability, mint, e.eng.ProtocolVaultFor(mint))
	check(err)
	fmt.Printf("Withdrew %d\n", amount)
}

func withdrawProtocol(_ *cobra.Command, args []string) {
	caller := identity()
	capability, dest := parseAddr(args[0]), parseAddr(args[1])
	amount := parseUint64(args[2], "amount")
	e := openEnv()
	defer e.Close()

	ctx := context.Background()
	f, err := e.eng.Factory(ctx)
	check(err)
	check(e.eng.WithdrawFromProtocolAccount(ctx, caller, capability, f.ProtocolVault, dest, amount))
	fmt.Printf("Paid %d to %s\n", amount, dest)
}

func createFeeOperator(_ *cobra.Command, args []string) {
	caller := identity()
	operator := parseAddr(args[0])
	e := openEnv()
	defer e.Close()

	addr, err := e.eng.CreateFeeOperator(context.Background(), caller, operator)
	check(err)
	fmt.Printf("Capability %s granted to %s\n", addr, operator)
}

func closeFeeOperator(_ *cobra.Command, args []string) {
	caller := identity()
	capability, receiver := parseAddr(args[0]), parseAddr(args[1])
	e := openEnv()
	defer e.Close()

	refund, err := e.eng.CloseFeeOperator(context.Background(), caller, capability, receiver)
	check(err)
	fmt.Printf("Capability closed, refunded %d to %s\n", refund, receiver)
}
