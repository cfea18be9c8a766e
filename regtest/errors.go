package regtest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNodeNotRunning is returned when the node doesn't answer.
	ErrNodeNotRunning = errors.New("regtest node is not running")

	// ErrAlreadyRunning is returned when starting a node that is already
	// up.
	ErrAlreadyRunning = errors.New("regtest node is already running")

	// ErrWalletNotFound is returned when loading a wallet the node doesn't
	// have.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrNoCoinbase is returned when mining without an address to pay the
	// block reward to.
	ErrNoCoinbase = errors.New("no coinbase address")

	// ErrUnexpectedResponse is returned for a response that doesn't have
	// the shape the request calls for.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// Error codes of the node's RPC interface.
const (
	rpcWalletError            = -4
	rpcWalletInvalidLabelName = -11
	rpcWalletNotFound         = -18
	rpcWalletAlreadyLoaded    = -35
)

// RPCError is an error reply of the node.
type RPCError struct {
	Code    int
	Message string
}

// Error satisfies the error interface and prints human-readable errors.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// isRPCError reports whether err is an RPCError with the given code.
func isRPCError(err error, code int) bool {
	rpcErr := &RPCError{}
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}

const (
	cliErrorPrefix  = "error code:"
	cliErrorMessage = "error message:"
)

var notRunningPrefixes = []string{
	"error: timeout on transient error",
	"error: Could not connect to the server",
}

// parseResponse splits the raw output of a request into a result and an
// error.
func parseResponse(resp string) (string, error) {
	for _, prefix := range notRunningPrefixes {
		if strings.HasPrefix(resp, prefix) {
			return "", errors.WithStack(ErrNodeNotRunning)
		}
	}
	if !strings.HasPrefix(resp, cliErrorPrefix) {
		return resp, nil
	}

	lines := strings.SplitN(resp, "\n", 2)
	code, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lines[0], cliErrorPrefix)))
	if err != nil {
		return "", errors.Wrapf(ErrUnexpectedResponse, "malformed error reply %q", resp)
	}
	rpcErr := &RPCError{Code: code}
	if len(lines) == 2 {
		rpcErr.Message = strings.TrimSpace(strings.TrimPrefix(lines[1], cliErrorMessage))
	}
	return "", rpcErr
}
