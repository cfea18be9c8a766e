// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrNotCoinbase is returned when a block height is requested from a
// transaction or input which isn't a coinbase.
var ErrNotCoinbase = errors.New("not a coinbase input")

// FormatError describes malformed wire data: a truncated field, a script
// whose commands don't add up to its declared length, a push that is too
// long, or a non-canonical varint. Func names the routine that detected the
// problem.
type FormatError struct {
	Func        string // Function name
	Description string // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e *FormatError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}

// formatError creates an error for the given function and description.
func formatError(f string, desc string) *FormatError {
	return &FormatError{Func: f, Description: desc}
}

// truncated converts a short read of the named field into a FormatError and
// passes any other error through unchanged.
func truncated(f string, field string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return formatError(f, fmt.Sprintf("insufficient bytes for %s", field))
	}
	return err
}
