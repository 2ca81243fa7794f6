package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libsovereign-go/account"
)

var cmdKeygen = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an identity key",
	Args:  cobra.NoArgs,
	Run:   keygen,
}

var cmdWhoami = &cobra.Command{
	Use:   "whoami",
	Short: "Print the address of the current identity",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		fmt.Println(identity())
	},
}

var flagKeygen struct {
	Force bool
}

func init() {
	cmdMain.AddCommand(cmdKeygen, cmdWhoami)
	cmdKeygen.Flags().BoolVar(&flagKeygen.Force, "force", false, "Overwrite an existing key file")
}

func keygen(*cobra.Command, []string) {
	path := keyPath()
	if _, err := os.Stat(path); err == nil && !flagKeygen.Force {
		fatalf("key file %s already exists (use --force to overwrite)", path)
	}

	pass := passphrase()
	if pass == "" {
		fatalf("a passphrase is required (--passphrase or $%s)", passphraseEnv)
	}

	kp, err := account.NewKeyPair()
	check(err)
	checkf(writeKeyFile(path, pass, kp), "write key")

	fmt.Printf("Address: %s\n", kp.Address)
	fmt.Printf("Key:     %s\n", path)
}
