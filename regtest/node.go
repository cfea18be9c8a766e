package regtest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/btcprim/btcprim/address"
	"github.com/btcprim/btcprim/chaincfg"
	"github.com/btcprim/btcprim/util"
	"github.com/btcprim/btcprim/wire"
	"github.com/btcsuite/btcutil"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	defaultWalletName = "default"
	coinbaseLabel     = "coinbase"
	stoppingResponse  = "Bitcoin Core stopping"
)

// Node is a local regtest node, started and stopped by the driver and
// used through its RPC interface.
type Node struct {
	cfg    *Config
	driver Driver
	run    runFunc

	coinbaseAddress string
}

// NewNode returns a node using the binaries and credentials in cfg.
func NewNode(cfg *Config) *Node {
	return newNode(cfg, NewCLIDriver(cfg), runCommand)
}

func newNode(cfg *Config, driver Driver, run runFunc) *Node {
	return &Node{cfg: cfg, driver: driver, run: run}
}

// CoinbaseAddress returns the address block rewards go to, if set up.
func (n *Node) CoinbaseAddress() string {
	return n.coinbaseAddress
}

// Request sends method with params to the node and returns the result. An
// error reply is returned as an *RPCError.
func (n *Node) Request(ctx context.Context, method string, params ...string) (string, error) {
	resp, err := n.driver.Request(ctx, method, params...)
	if err != nil {
		return "", err
	}
	result, err := parseResponse(resp)
	if err != nil {
		return "", errors.Wrapf(err, "%s", method)
	}
	return result, nil
}

// requestJSON sends method with params and decodes the result into v.
func (n *Node) requestJSON(ctx context.Context, v interface{}, method string, params ...string) error {
	result, err := n.Request(ctx, method, params...)
	if err != nil {
		return err
	}
	err = json.Unmarshal([]byte(result), v)
	if err != nil {
		return errors.Wrapf(ErrUnexpectedResponse, "%s: %s", method, err)
	}
	return nil
}

// Up starts the node and sets up the default wallet with its coinbase
// address. If the node is already running it is restarted when reload is
// set, and ErrAlreadyRunning is returned otherwise.
func (n *Node) Up(ctx context.Context, reload bool) (string, error) {
	args := append(n.cfg.baseArgs(), "-fallbackfee="+defaultFallbackFee, "-daemon")
	msg, err := n.run(ctx, n.cfg.BitcoindPath(), args...)
	if err != nil {
		return "", err
	}
	err = sleep(ctx, n.cfg.StartupDelay)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(msg, "Error") {
		if !reload {
			return "", errors.Wrap(ErrAlreadyRunning, msg)
		}
		log.Infof("Restarting the running regtest node")
		_, err := n.Shutdown(ctx)
		if err != nil {
			return "", err
		}
		err = sleep(ctx, n.cfg.RetryDelay)
		if err != nil {
			return "", err
		}
		return n.Up(ctx, false)
	}
	log.Infof("Started regtest node on RPC port %s", n.cfg.RPCPort)
	return n.SetupWallet(ctx, defaultWalletName)
}

// Shutdown asks the node to stop, retrying while it doesn't answer. It
// returns whether the node acknowledged.
func (n *Node) Shutdown(ctx context.Context) (bool, error) {
	for i := 0; i < n.cfg.ShutdownRetries; i++ {
		resp, err := n.Request(ctx, "stop")
		if errors.Is(err, ErrNodeNotRunning) {
			err := sleep(ctx, n.cfg.RetryDelay)
			if err != nil {
				return false, err
			}
			continue
		}
		if err != nil {
			return false, err
		}
		if resp == stoppingResponse {
			return true, nil
		}
	}
	return false, nil
}

// GenerateToAddress mines blocks paying to addr and returns their hashes.
func (n *Node) GenerateToAddress(ctx context.Context, blocks int, addr string) ([]string, error) {
	var hashes []string
	err := n.requestJSON(ctx, &hashes, "generatetoaddress", strconv.Itoa(blocks), addr)
	if err != nil {
		return nil, err
	}
	log.Debugf("Mined %d blocks paying to %s", len(hashes), addr)
	return hashes, nil
}

// MakeBlocks mines blocks paying to the coinbase address.
func (n *Node) MakeBlocks(ctx context.Context, blocks int) ([]string, error) {
	if n.coinbaseAddress == "" {
		return nil, errors.WithStack(ErrNoCoinbase)
	}
	return n.GenerateToAddress(ctx, blocks, n.coinbaseAddress)
}

// SetupWallet loads the wallet named name, creating it first if the node
// doesn't have it, and returns its coinbase address.
func (n *Node) SetupWallet(ctx context.Context, name string) (string, error) {
	wallets, err := n.ListWalletDir(ctx)
	if err != nil {
		return "", err
	}
	exists := false
	for _, wallet := range wallets {
		if wallet == name {
			exists = true
			break
		}
	}
	if !exists {
		err := n.CreateWallet(ctx, name)
		if err != nil {
			return "", err
		}
	}
	err = n.LoadWallet(ctx, name)
	if err != nil {
		return "", err
	}
	return n.setupCoinbase(ctx)
}

// CreateWallet creates a wallet named name. An existing wallet is not an
// error.
func (n *Node) CreateWallet(ctx context.Context, name string) error {
	var result struct {
		Name string `json:"name"`
	}
	err := n.requestJSON(ctx, &result, "createwallet", name)
	if isRPCError(err, rpcWalletError) {
		return nil
	}
	return err
}

// LoadWallet loads the wallet named name and unloads every other wallet.
func (n *Node) LoadWallet(ctx context.Context, name string) error {
	_, err := n.Request(ctx, "loadwallet", name)
	switch {
	case isRPCError(err, rpcWalletNotFound):
		return errors.Wrapf(ErrWalletNotFound, "%q", name)
	case err != nil && !isRPCError(err, rpcWalletAlreadyLoaded):
		return err
	}

	loaded, err := n.ListWallets(ctx)
	if err != nil {
		return err
	}
	for _, wallet := range loaded {
		if wallet == name {
			continue
		}
		_, err := n.UnloadWallet(ctx, wallet)
		if err != nil {
			return err
		}
	}
	return nil
}

// UnloadWallet unloads the wallet named name and returns whether it was
// loaded.
func (n *Node) UnloadWallet(ctx context.Context, name string) (bool, error) {
	_, err := n.Request(ctx, "unloadwallet", name)
	if isRPCError(err, rpcWalletNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListWallets returns the names of the loaded wallets.
func (n *Node) ListWallets(ctx context.Context) ([]string, error) {
	var wallets []string
	err := n.requestJSON(ctx, &wallets, "listwallets")
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

// ListWalletDir returns the names of the wallets the node has on disk.
func (n *Node) ListWalletDir(ctx context.Context) ([]string, error) {
	var result struct {
		Wallets []struct {
			Name string `json:"name"`
		} `json:"wallets"`
	}
	err := n.requestJSON(ctx, &result, "listwalletdir")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(result.Wallets))
	for i, wallet := range result.Wallets {
		names[i] = wallet.Name
	}
	return names, nil
}

func (n *Node) setupCoinbase(ctx context.Context) (string, error) {
	addrs, err := n.AddressesByLabel(ctx, coinbaseLabel)
	if err != nil {
		return "", err
	}
	if len(addrs) > 0 {
		n.coinbaseAddress = addrs[0]
		return n.coinbaseAddress, nil
	}
	n.coinbaseAddress, err = n.NewAddress(ctx, coinbaseLabel, address.DefaultType)
	if err != nil {
		return "", err
	}
	return n.coinbaseAddress, nil
}

// NewAddress asks the wallet for a new address of the given type and checks
// it is a regtest address.
func (n *Node) NewAddress(ctx context.Context, label string, addrType address.Type) (string, error) {
	addrType, err := address.ParseType(string(addrType))
	if err != nil {
		return "", err
	}
	addr, err := n.Request(ctx, "getnewaddress", label, string(addrType))
	if err != nil {
		return "", err
	}
	decoded, err := address.Decode(addr)
	if err != nil {
		return "", errors.Wrapf(ErrUnexpectedResponse, "getnewaddress: %s", err)
	}
	// Base58 regtest addresses decode as testnet3, which shares their
	// version bytes.
	if decoded.Params != &chaincfg.RegressionNetParams && decoded.Params != &chaincfg.TestNet3Params {
		return "", errors.Wrapf(ErrUnexpectedResponse, "getnewaddress: %s is a %s address",
			addr, decoded.Params.Name)
	}
	return addr, nil
}

// AddressesByLabel returns the wallet's addresses carrying label, sorted.
func (n *Node) AddressesByLabel(ctx context.Context, label string) ([]string, error) {
	var result map[string]json.RawMessage
	err := n.requestJSON(ctx, &result, "getaddressesbylabel", label)
	if isRPCError(err, rpcWalletInvalidLabelName) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	addrs := make([]string, 0, len(result))
	for addr := range result {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs, nil
}

// Balance returns the wallet's trusted balance.
func (n *Node) Balance(ctx context.Context) (btcutil.Amount, error) {
	var balance float64
	err := n.requestJSON(ctx, &balance, "getbalance")
	if err != nil {
		return 0, err
	}
	return btcutil.NewAmount(balance)
}

// SendToAddress sends amount from the wallet to addr and returns the id of
// the transaction.
func (n *Node) SendToAddress(ctx context.Context, addr string, amount btcutil.Amount) (string, error) {
	btc := strconv.FormatFloat(amount.ToBTC(), 'f', 8, 64)
	return n.Request(ctx, "sendtoaddress", addr, btc)
}

// BlockCount returns the height of the node's best block.
func (n *Node) BlockCount(ctx context.Context) (uint64, error) {
	var count uint64
	err := n.requestJSON(ctx, &count, "getblockcount")
	if err != nil {
		return 0, err
	}
	return count, nil
}

// BlockHash returns the hash of the best chain's block at height.
func (n *Node) BlockHash(ctx context.Context, height uint64) (string, error) {
	return n.Request(ctx, "getblockhash", strconv.FormatUint(height, 10))
}

// Block fetches the block with the given hash. Its merkle root and hash are
// recomputed from the reported transactions and header.
func (n *Node) Block(ctx context.Context, hash string) (*util.Block, error) {
	resp, err := n.Request(ctx, "getblock", hash, "1")
	if err != nil {
		return nil, err
	}
	return util.ParseBlockRecord([]byte(resp))
}

// RawTransaction fetches the transaction with id txID from the block with
// hash blockHash, parses it from its hex and checks it against the node's
// decoding.
func (n *Node) RawTransaction(ctx context.Context, txID, blockHash string) (*wire.MsgTx, error) {
	resp, err := n.Request(ctx, "getrawtransaction", txID, "true", blockHash)
	if err != nil {
		return nil, err
	}
	record, err := wire.DecodeTransactionRecord([]byte(resp))
	if err != nil {
		return nil, err
	}
	msg, err := wire.ParseTransaction(record.Hex)
	if err != nil {
		return nil, err
	}
	err = wire.VerifyRecord(msg, record)
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s doesn't match the node's decoding", txID)
	}
	return msg, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
