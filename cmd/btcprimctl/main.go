package main

import (
	"fmt"
	"os"

	"github.com/btcprim/btcprim/version"
	"github.com/pkg/errors"
)

func main() {
	subCmd, cfg, subConfig := parseCommandLine()
	p := newPrinter(os.Stdout, cfg.Verbose)

	var err error
	switch subCmd {
	case headerSubCmd:
		err = header(subConfig.(*headerConfig), p)
	case txSubCmd:
		err = tx(subConfig.(*txConfig), p)
	case merkleRootSubCmd:
		err = merkleRoot(subConfig.(*merkleRootConfig), p)
	case proveSubCmd:
		err = prove(subConfig.(*proveConfig), p)
	case verifySubCmd:
		err = verify(subConfig.(*verifyConfig), p)
	case blockSubCmd:
		err = block(subConfig.(*blockConfig), p)
	case mineSubCmd:
		err = mine(subConfig.(*mineConfig), p)
	case addressSubCmd:
		err = encodeAddress(subConfig.(*addressConfig), p)
	case decodeAddressSubCmd:
		err = decodeAddress(subConfig.(*decodeAddressConfig), p)
	case regtestSubCmd:
		err = regtestNode(subConfig.(*regtestConfig), p)
	case versionSubCmd:
		fmt.Println(version.Version())
	default:
		err = errors.Errorf("Unknown sub-command '%s'\n", subCmd)
	}

	if err != nil {
		log.Debugf("%s failed: %+v", subCmd, err)
		printErrorAndExit(err)
	}
}
