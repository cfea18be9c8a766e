package main

import (
	"os"

	"github.com/btcprim/btcprim/infrastructure/config"
	"github.com/btcprim/btcprim/regtest"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	headerSubCmd        = "header"
	txSubCmd            = "tx"
	merkleRootSubCmd    = "merkleroot"
	proveSubCmd         = "prove"
	verifySubCmd        = "verify"
	blockSubCmd         = "block"
	mineSubCmd          = "mine"
	addressSubCmd       = "address"
	decodeAddressSubCmd = "decodeaddress"
	regtestSubCmd       = "regtest"
	versionSubCmd       = "version"
)

type configFlags struct {
	Verbose bool `long:"verbose" short:"v" description:"Dump the parsed values in full"`
	config.LogFlags
	config.NetworkFlags
}

type headerConfig struct {
	Hex    string `long:"hex" short:"x" description:"The 80-byte block header (encoded in hex)"`
	Record string `long:"record" short:"r" description:"A getblockheader JSON record to build the header from"`
	config.NetworkFlags
}

type txConfig struct {
	Hex    string `long:"hex" short:"x" description:"The serialized transaction (encoded in hex)"`
	Record string `long:"record" short:"r" description:"A getrawtransaction verbose JSON record to parse and check"`
	config.NetworkFlags
}

type merkleRootConfig struct {
	TxIDs []string `long:"txid" short:"t" description:"A transaction id in big-endian hex, repeated in block order" required:"true"`
	config.NetworkFlags
}

type proveConfig struct {
	TxIDs   []string `long:"txid" short:"t" description:"A transaction id in big-endian hex, repeated in block order" required:"true"`
	Indices []int    `long:"index" short:"i" description:"The index of a transaction to prove, repeated for a multiproof" required:"true"`
	Binary  bool     `long:"binary" short:"b" description:"Print the proof in its binary form (encoded in hex) instead of JSON"`
	config.NetworkFlags
}

type verifyConfig struct {
	Proof  string `long:"proof" short:"p" description:"The proof, as JSON or in its binary form (encoded in hex)" required:"true"`
	Binary bool   `long:"binary" short:"b" description:"The proof is in its binary form"`
	config.NetworkFlags
}

type blockConfig struct {
	Record  string `long:"record" short:"r" description:"A getblock JSON record, or a path to a file holding one" required:"true"`
	Indices []int  `long:"prove" short:"i" description:"The index of a transaction to prove, repeated for a multiproof"`
	config.NetworkFlags
}

type mineConfig struct {
	Hex       string `long:"hex" short:"x" description:"The header template (encoded in hex)" required:"true"`
	MaxNonce  uint32 `long:"max-nonce" description:"The last nonce to try before rolling the timestamp"`
	TimeRolls uint32 `long:"time-rolls" description:"How many times the timestamp may be incremented once the nonces run out"`
	Timeout   uint64 `long:"timeout" description:"Give up after this many seconds; 0 means no limit"`
	config.NetworkFlags
}

type addressConfig struct {
	PubKey     string `long:"pubkey" short:"k" description:"A serialized public key (encoded in hex)"`
	PubKeyHash string `long:"pubkey-hash" short:"p" description:"A 20-byte public key hash (encoded in hex)"`
	Type       string `long:"type" short:"t" description:"The address type {legacy, p2sh-segwit, bech32}"`
	config.NetworkFlags
}

type decodeAddressConfig struct {
	Address string `long:"address" short:"a" description:"The address to decode" required:"true"`
	config.NetworkFlags
}

type regtestConfig struct {
	regtest.Config
	Reload   bool `long:"reload" description:"Restart the node if it is already running"`
	Generate int  `long:"generate" short:"g" description:"Mine this many blocks to the coinbase address once the node is up"`
	Shutdown bool `long:"shutdown" description:"Stop the node instead of starting it"`
}

type versionConfig struct{}

func parseCommandLine() (subCommand string, cfg *configFlags, subConfig interface{}) {
	cfg = &configFlags{LogFlags: config.DefaultLogFlags()}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)

	headerConf := &headerConfig{}
	parser.AddCommand(headerSubCmd, "Parse a block header",
		"Parse a block header from its hex or a JSON record, and print its hash and target", headerConf)

	txConf := &txConfig{}
	parser.AddCommand(txSubCmd, "Parse a transaction",
		"Parse a serialized transaction and print its ids and scripts", txConf)

	merkleRootConf := &merkleRootConfig{}
	parser.AddCommand(merkleRootSubCmd, "Compute a merkle root",
		"Compute the merkle root of a block's transaction ids", merkleRootConf)

	proveConf := &proveConfig{}
	parser.AddCommand(proveSubCmd, "Generate a merkle multiproof",
		"Generate a proof that the transactions at the given indices are in the block", proveConf)

	verifyConf := &verifyConfig{}
	parser.AddCommand(verifySubCmd, "Verify a merkle multiproof",
		"Verify a merkle multiproof against the root it carries", verifyConf)

	blockConf := &blockConfig{}
	parser.AddCommand(blockSubCmd, "Check a block record",
		"Check a getblock record's header and merkle root, optionally proving some of its transactions", blockConf)

	mineConf := &mineConfig{}
	parser.AddCommand(mineSubCmd, "Solve a block header",
		"Search for a nonce that gives the header template enough proof of work", mineConf)

	addressConf := &addressConfig{}
	parser.AddCommand(addressSubCmd, "Encode an address",
		"Encode the address paying to a public key or public key hash", addressConf)

	decodeAddressConf := &decodeAddressConfig{}
	parser.AddCommand(decodeAddressSubCmd, "Decode an address",
		"Decode an address into its type, hash, network and output script", decodeAddressConf)

	regtestConf := &regtestConfig{Config: *regtest.DefaultConfig("")}
	parser.AddCommand(regtestSubCmd, "Start or stop a regtest node",
		"Start a local bitcoind regtest node with a funded default wallet, or stop it", regtestConf)

	parser.AddCommand(versionSubCmd, "Print the version", "Print the version", &versionConfig{})

	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
		return "", nil, nil
	}

	var networkFlags *config.NetworkFlags
	switch parser.Command.Active.Name {
	case headerSubCmd:
		networkFlags, subConfig = &headerConf.NetworkFlags, headerConf
	case txSubCmd:
		networkFlags, subConfig = &txConf.NetworkFlags, txConf
	case merkleRootSubCmd:
		networkFlags, subConfig = &merkleRootConf.NetworkFlags, merkleRootConf
	case proveSubCmd:
		networkFlags, subConfig = &proveConf.NetworkFlags, proveConf
	case verifySubCmd:
		networkFlags, subConfig = &verifyConf.NetworkFlags, verifyConf
	case blockSubCmd:
		networkFlags, subConfig = &blockConf.NetworkFlags, blockConf
	case mineSubCmd:
		networkFlags, subConfig = &mineConf.NetworkFlags, mineConf
	case addressSubCmd:
		networkFlags, subConfig = &addressConf.NetworkFlags, addressConf
	case decodeAddressSubCmd:
		networkFlags, subConfig = &decodeAddressConf.NetworkFlags, decodeAddressConf
	case regtestSubCmd:
		subConfig = regtestConf
	}

	if networkFlags != nil {
		combineNetworkFlags(networkFlags, &cfg.NetworkFlags)
		err = networkFlags.ResolveNetwork(parser)
		if err != nil {
			printErrorAndExit(err)
		}
	}
	err = cfg.InitLog()
	if err != nil {
		printErrorAndExit(err)
	}

	return parser.Command.Active.Name, cfg, subConfig
}

func combineNetworkFlags(dst, src *config.NetworkFlags) {
	dst.Testnet = dst.Testnet || src.Testnet
	dst.Regtest = dst.Regtest || src.Regtest
}
