package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libsovereign-go/config"
)

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var cmdConfigInit = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		path := config.ConfigPath(flagMain.DataDir)
		if _, err := os.Stat(path); err == nil {
			fatalf("config %s already exists", path)
		}
		cfg := config.DefaultConfig()
		cfg.DataDir = flagMain.DataDir
		if flagMain.Network != "" {
			cfg.Network = flagMain.Network
		}
		checkf(config.ValidateConfig(cfg), "invalid config")
		checkf(config.SaveConfig(path, cfg), "save config")
		fmt.Printf("Wrote %s\n", path)
	},
}

var cmdConfigShow = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		cfg := loadConfig()
		fmt.Printf("datadir          = %s\n", cfg.DataDir)
		fmt.Printf("listen           = %s\n", cfg.ListenAddr)
		fmt.Printf("network          = %s\n", cfg.Network)
		fmt.Printf("loglevel         = %s\n", cfg.LogLevel)
		fmt.Printf("logfile          = %s\n", cfg.LogFile)
		fmt.Printf("harvest_schedule = %s\n", cfg.HarvestSchedule)
	},
}

func init() {
	cmdMain.AddCommand(cmdConfig)
	cmdConfig.AddCommand(cmdConfigInit, cmdConfigShow)
}
