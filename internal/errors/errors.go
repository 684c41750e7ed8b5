// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package errors implements functions to manipulate the errors reported by
// the gzip and flate decoders.
//
// Every error produced by those packages is an Error with a Code drawn from
// the list below, so that callers can classify failures without matching on
// message text.
package errors

import (
	"runtime"
	"strings"
)

const (
	// Unknown indicates that there is no classification for this error.
	Unknown = iota

	// Internal indicates that this error is due to an internal bug.
	// Users should file an issue report if this type of error is encountered.
	Internal

	// Invalid indicates that this error is due to the user misusing the API
	// and is indicative of a bug on the user's part.
	Invalid

	// MalformedHeader indicates a bad gzip magic, an unsupported compression
	// method, reserved flag bits, or a header CRC-16 mismatch.
	MalformedHeader

	// MalformedFooter indicates trailing data after a single gzip member.
	MalformedFooter

	// Integrity indicates a CRC-32 or size mismatch at the gzip footer.
	Integrity

	// InvalidHuffmanTable indicates an over- or under-subscribed prefix code,
	// or a bit pattern that maps to no symbol.
	InvalidHuffmanTable

	// MalformedDynamicHeader indicates bad run-length escapes or a length
	// count mismatch in a dynamic block header.
	MalformedDynamicHeader

	// MalformedStoredBlock indicates a LEN/NLEN mismatch.
	MalformedStoredBlock

	// InvalidSymbol indicates use of a reserved literal/length symbol,
	// distance symbol, or block type.
	InvalidSymbol

	// InvalidBackReference indicates a zero distance or one that reaches
	// before the start of the output.
	InvalidBackReference

	// TruncatedInput indicates that the input ended mid-field or mid-block.
	TruncatedInput

	// Source indicates a failure of the underlying input transport.
	Source
)

var codeMap = map[int]string{
	Unknown:                "unknown error",
	Internal:               "internal error",
	Invalid:                "invalid argument",
	MalformedHeader:        "malformed header",
	MalformedFooter:        "malformed footer",
	Integrity:              "integrity error",
	InvalidHuffmanTable:    "invalid huffman table",
	MalformedDynamicHeader: "malformed dynamic header",
	MalformedStoredBlock:   "malformed stored block",
	InvalidSymbol:          "invalid symbol",
	InvalidBackReference:   "invalid back-reference",
	TruncatedInput:         "truncated input",
	Source:                 "source error",
}

type Error struct {
	Code int    // The error type
	Pkg  string // Name of the package where the error originated
	Msg  string // Descriptive message about the error (optional)
	Err  error  // Underlying error for Source errors (optional)
}

func (e Error) Error() string {
	var ss []string
	for _, s := range []string{e.Pkg, codeMap[e.Code], e.Msg} {
		if s != "" {
			ss = append(ss, s)
		}
	}
	if e.Err != nil {
		ss = append(ss, e.Err.Error())
	}
	return strings.Join(ss, ": ")
}

func (e Error) Unwrap() error { return e.Err }

// Code reports the classification of err, or Unknown if err is not an Error.
func Code(err error) int {
	switch e := err.(type) {
	case Error:
		return e.Code
	case *Error:
		return e.Code
	}
	return Unknown
}

func IsInternal(err error) bool               { return Code(err) == Internal }
func IsInvalid(err error) bool                { return Code(err) == Invalid }
func IsMalformedHeader(err error) bool        { return Code(err) == MalformedHeader }
func IsMalformedFooter(err error) bool        { return Code(err) == MalformedFooter }
func IsIntegrity(err error) bool              { return Code(err) == Integrity }
func IsInvalidHuffmanTable(err error) bool    { return Code(err) == InvalidHuffmanTable }
func IsMalformedDynamicHeader(err error) bool { return Code(err) == MalformedDynamicHeader }
func IsMalformedStoredBlock(err error) bool   { return Code(err) == MalformedStoredBlock }
func IsInvalidSymbol(err error) bool          { return Code(err) == InvalidSymbol }
func IsInvalidBackReference(err error) bool   { return Code(err) == InvalidBackReference }
func IsTruncated(err error) bool              { return Code(err) == TruncatedInput }
func IsSource(err error) bool                 { return Code(err) == Source }

// IsCorrupted reports whether err describes malformed compressed data,
// as opposed to a transport failure, truncation, or API misuse.
func IsCorrupted(err error) bool {
	switch Code(err) {
	case MalformedHeader, MalformedFooter, Integrity, InvalidHuffmanTable,
		MalformedDynamicHeader, MalformedStoredBlock, InvalidSymbol,
		InvalidBackReference:
		return true
	}
	return false
}

// errWrap is used by Panic and Recover to ensure that only errors raised by
// Panic are recovered by Recover.
type errWrap struct{ e *error }

func Recover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case errWrap:
		*err = *ex.e
	case runtime.Error:
		panic(ex)
	default:
		panic(ex)
	}
}

func Panic(err error) {
	panic(errWrap{&err})
}
