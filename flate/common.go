// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package flate implements a resumable decoder for the DEFLATE compressed
// data format, described in RFC 1951.
//
// The Decoder is a push-style state machine: compressed input is fed in
// pieces of any size, and decompressed output is pulled out as chunks of a
// fixed maximum size. When the Decoder runs out of input in the middle of a
// block it reports ErrNeedInput and rolls back to the last fully decoded
// symbol, so decoding can be resumed once more input is available.
// The Reader type wraps a Decoder around an io.Reader.
package flate

import (
	"fmt"

	"github.com/dsnet/gzstream/internal/errors"
)

const (
	maxHistSize = 1 << 15
	maxMatchLen = 258
	endBlockSym = 256

	// DefaultChunkSize is the maximum size of the output chunks produced by
	// a Decoder when no size is configured.
	DefaultChunkSize = 32 << 10

	// MaxChunkSize is the largest ChunkSize a Decoder accepts.
	MaxChunkSize = 1 << 20

	// DefaultBufferSize is the amount of input a Reader requests from the
	// underlying io.Reader at a time when no size is configured.
	DefaultBufferSize = 4 << 10
)

// Error is the type of sentinel values returned by this package that are
// not failures of the compressed stream itself.
type Error string

func (e Error) Error() string { return "flate: " + string(e) }

var (
	// ErrNeedInput is returned by Decoder.Next when decoding cannot progress
	// until more input is fed. The decoder state is left exactly as it was
	// after the last fully decoded unit, so the call may simply be retried.
	ErrNeedInput error = Error("need more input")

	// errShortInput is raised internally when the bit reader runs dry.
	errShortInput error = Error("short input")
)

func errorf(code int, format string, args ...interface{}) error {
	return errors.Error{Code: code, Pkg: "flate", Msg: fmt.Sprintf(format, args...)}
}

// allocUint32s returns a slice with length n, reusing s if possible.
func allocUint32s(s []uint32, n int) []uint32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]uint32, n, n*3/2)
}

// extendSliceUint32s returns a slice with length n, reusing s if possible.
func extendSliceUint32s(s [][]uint32, n int) [][]uint32 {
	if cap(s) >= n {
		return s[:n]
	}
	ss := make([][]uint32, n, n*3/2)
	copy(ss, s[:cap(s)])
	return ss
}
