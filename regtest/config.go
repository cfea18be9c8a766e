package regtest

import (
	"path/filepath"
	"time"

	"github.com/btcprim/btcprim/chaincfg"
)

const (
	defaultRPCUser         = "admin"
	defaultRPCPassword     = "0000"
	defaultStartupDelay    = time.Second
	defaultShutdownRetries = 3
	defaultRetryDelay      = 500 * time.Millisecond
	defaultFallbackFee     = "0.00001"
)

// Config holds the settings of a local regtest node.
type Config struct {
	SrcPath         string        `long:"srcpath" description:"Directory holding the bitcoind and bitcoin-cli binaries"`
	RPCPort         string        `long:"rpcport" description:"RPC port of the regtest node"`
	RPCUser         string        `long:"rpcuser" description:"RPC user name"`
	RPCPassword     string        `long:"rpcpass" default-mask:"-" description:"RPC password"`
	StartupDelay    time.Duration `long:"startupdelay" description:"Time to give the node to start before using it"`
	ShutdownRetries int           `long:"shutdownretries" description:"Number of stop requests sent before giving up"`
	RetryDelay      time.Duration `long:"retrydelay" description:"Time between stop requests"`
}

// DefaultConfig returns the settings bitcoind uses for regtest out of the
// box, with binaries looked up in srcPath.
func DefaultConfig(srcPath string) *Config {
	return &Config{
		SrcPath:         srcPath,
		RPCPort:         chaincfg.RegressionNetParams.RPCPort,
		RPCUser:         defaultRPCUser,
		RPCPassword:     defaultRPCPassword,
		StartupDelay:    defaultStartupDelay,
		ShutdownRetries: defaultShutdownRetries,
		RetryDelay:      defaultRetryDelay,
	}
}

// BitcoindPath returns the path of the node binary.
func (cfg *Config) BitcoindPath() string {
	return filepath.Join(cfg.SrcPath, "bitcoind")
}

// CLIPath returns the path of the RPC client binary.
func (cfg *Config) CLIPath() string {
	return filepath.Join(cfg.SrcPath, "bitcoin-cli")
}

// baseArgs are the arguments both binaries are run with.
func (cfg *Config) baseArgs() []string {
	return []string{
		"-rpcport=" + cfg.RPCPort,
		"-rpcuser=" + cfg.RPCUser,
		"-rpcpassword=" + cfg.RPCPassword,
		"-regtest",
	}
}
