// Command sovereign administers sovereign coins against a local bbolt
// database holding both the records and the token ledger.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libsovereign-go/account"
	"github.com/bitfsorg/libsovereign-go/config"
	"github.com/bitfsorg/libsovereign-go/engine"
	"github.com/bitfsorg/libsovereign-go/ledger"
	"github.com/bitfsorg/libsovereign-go/metrics"
	"github.com/bitfsorg/libsovereign-go/store"
)

var cmdMain = &cobra.Command{
	Use:          "sovereign",
	Short:        "Sovereign coin factory administration",
	SilenceUsage: true,
}

var flagMain struct {
	DataDir    string
	Network    string
	LogLevel   string
	Key        string
	Passphrase string
}

// passphraseEnv supplies the key file passphrase when --passphrase is unset.
const passphraseEnv = "SOVEREIGN_PASSPHRASE"

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.DataDir, "data-dir", "d", config.DefaultDataDir(), "Directory for configuration, records and ledger")
	cmdMain.PersistentFlags().StringVar(&flagMain.Network, "network", "", "Network scoping derived addresses (overrides config)")
	cmdMain.PersistentFlags().StringVar(&flagMain.LogLevel, "log-level", "", "Log level (overrides config)")
	cmdMain.PersistentFlags().StringVarP(&flagMain.Key, "key", "k", "", "Hex private key or encrypted key file (default <data-dir>/key)")
	cmdMain.PersistentFlags().StringVar(&flagMain.Passphrase, "passphrase", "", "Key file passphrase (default $"+passphraseEnv+")")
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// check exits with the error's stable code when err is non-nil.
func check(err error) {
	if err != nil {
		fatalf("[%s] %v", engine.Code(err), err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}

// loadConfig reads the config in the data dir and applies flag overrides.
func loadConfig() config.Config {
	cfg, err := config.LoadConfig(config.ConfigPath(flagMain.DataDir))
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		checkf(err, "load config")
	}
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg.DataDir = flagMain.DataDir
	}
	if flagMain.Network != "" {
		cfg.Network = flagMain.Network
	}
	if flagMain.LogLevel != "" {
		cfg.LogLevel = flagMain.LogLevel
	}
	checkf(config.ValidateConfig(cfg), "invalid config")
	return cfg
}

func newLogger(cfg config.Config) (*slog.Logger, io.Closer) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	check(err)

	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		checkf(err, "open log file")
		w, closer = f, f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer
}

// env is an open engine with its backing store and ledger.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.BoltStore
	ledger *ledger.Ledger
	eng    *engine.Engine
	closer io.Closer
}

func openEnv(opts ...engine.Option) *env {
	cfg := loadConfig()
	logger, closer := newLogger(cfg)

	st, err := store.OpenBoltStore(config.StorePath(cfg.DataDir))
	checkf(err, "open store")
	l, err := engine.LoadLedger(st)
	checkf(err, "open ledger")

	opts = append([]engine.Option{
		engine.WithLogger(logger),
		engine.WithNetwork(cfg.Network),
	}, opts...)
	return &env{
		cfg:    cfg,
		logger: logger,
		store:  st,
		ledger: l,
		eng:    engine.New(st, l, opts...),
		closer: closer,
	}
}

func openEnvWithMetrics(m *metrics.Metrics) *env {
	return openEnv(engine.WithMetrics(m))
}

func (e *env) Close() {
	_ = e.store.Close()
	_ = e.closer.Close()
}

func keyPath() string {
	if flagMain.Key != "" {
		return flagMain.Key
	}
	return filepath.Join(flagMain.DataDir, "key")
}

func passphrase() string {
	if flagMain.Passphrase != "" {
		return flagMain.Passphrase
	}
	return os.Getenv(passphraseEnv)
}

// identity loads the caller key from --key, either hex or an encrypted
// key file.
func identity() account.Address {
	if kp, err := account.KeyPairFromHex(flagMain.Key); flagMain.Key != "" && err == nil {
		return kp.Address
	}
	kp, err := readKeyFile(keyPath(), passphrase())
	checkf(err, "load key %s (run 'sovereign keygen' first)", keyPath())
	return kp.Address
}

func readKeyFile(path, pass string) (*account.KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return account.DecryptKey(data, pass)
}

func writeKeyFile(path, pass string, kp *account.KeyPair) error {
	sealed, err := account.EncryptKey(kp, pass)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, sealed, 0600)
}

func parseAddr(s string) account.Address {
	a, err := account.ParseAddress(s)
	checkf(err, "address %q", s)
	return a
}

func parseAddrs(ss []string) []account.Address {
	out := make([]account.Address, len(ss))
	for i, s := range ss {
		out[i] = parseAddr(s)
	}
	return out
}

func parseUint8(s, what string) uint8 {
	v, err := strconv.ParseUint(s, 10, 8)
	checkf(err, "invalid %s %q", what, s)
	return uint8(v)
}

func parseUint64(s, what string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	checkf(err, "invalid %s %q", what, s)
	return v
}
