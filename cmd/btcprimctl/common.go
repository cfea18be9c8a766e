package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
)

// printer writes command results. In verbose mode the parsed values are
// dumped after the result.
type printer struct {
	out     io.Writer
	verbose bool
}

func newPrinter(out io.Writer, verbose bool) *printer {
	return &printer{out: out, verbose: verbose}
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) printJSON(v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	p.printf("%s\n", encoded)
	return nil
}

func (p *printer) dump(v interface{}) {
	if p.verbose {
		spew.Fdump(p.out, v)
	}
}

func printErrorAndExit(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

// readArgument returns arg itself when it looks like inline JSON, and the
// contents of the file it names otherwise.
func readArgument(arg string) ([]byte, error) {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return []byte(trimmed), nil
	}
	return os.ReadFile(arg)
}

func hexString(b []byte) string {
	return hex.EncodeToString(b)
}

// btcValue converts an amount in satoshi to BTC.
func btcValue(satoshi int64) float64 {
	return btcutil.Amount(satoshi).ToBTC()
}
