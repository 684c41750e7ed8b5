// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package testutil is a collection of testing helper methods.
package testutil

import (
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"
	"io"
)

// ResizeData resizes the input. If n < 0, then the original input will be
// returned as is. If n <= len(input), then the input slice will be truncated.
// However, if n > len(input), then the input will be replicated to fill in
// the missing bytes, but each replicated string will be XORed by some byte
// mask to avoid favoring algorithms with large LZ77 windows.
//
// If n > len(input), then len(input) must be > 0.
func ResizeData(input []byte, n int) []byte {
	if n < 0 {
		return input
	}
	if len(input) >= n {
		return input[:n]
	}
	if len(input) == 0 {
		panic("unable to replicate an empty string")
	}

	var mask byte
	output := make([]byte, n)
	for i := range output {
		idx := i % len(input)
		output[i] = input[idx] ^ mask
		if idx == len(input)-1 {
			mask++
		}
	}
	return output
}

// MustDecodeHex must decode a hexadecimal string or else panics.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDecodeBitGen must decode a BitGen formatted string or else panics.
func MustDecodeBitGen(s string) []byte {
	b, err := DecodeBitGen(s)
	if err != nil {
		panic(err)
	}
	return b
}

// StoredBlocks encodes data as a raw DEFLATE stream made only of stored
// blocks, splitting it at each of the given sizes. Whatever is left after the
// listed sizes goes into the final block.
func StoredBlocks(data []byte, sizes ...int) []byte {
	var out []byte
	emit := func(b []byte, last bool) {
		var hdr [5]byte
		if last {
			hdr[0] = 0x01
		}
		binary.LittleEndian.PutUint16(hdr[1:], uint16(len(b)))
		binary.LittleEndian.PutUint16(hdr[3:], ^uint16(len(b)))
		out = append(out, hdr[:]...)
		out = append(out, b...)
	}
	for _, n := range sizes {
		if n > 0xffff || n > len(data) {
			panic("invalid stored block size")
		}
		emit(data[:n], false)
		data = data[n:]
	}
	if len(data) > 0xffff {
		panic("final stored block too large")
	}
	emit(data, true)
	return out
}

// GzipMember wraps a raw DEFLATE body in a minimal gzip header and a footer
// computed over the uncompressed data.
func GzipMember(body, data []byte) []byte {
	out := []byte{0x1f, 0x8b, 0x08, 0x00, 0, 0, 0, 0, 0x00, 0xff}
	out = append(out, body...)
	var ftr [8]byte
	binary.LittleEndian.PutUint32(ftr[0:], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(ftr[4:], uint32(len(data)))
	return append(out, ftr[:]...)
}

// BuggyReader returns Err after N bytes have been read from R.
type BuggyReader struct {
	R   io.Reader
	N   int64 // Number of valid bytes to read
	Err error // Return this error after N bytes
}

func (br *BuggyReader) Read(buf []byte) (int, error) {
	if int64(len(buf)) > br.N {
		buf = buf[:br.N]
	}
	n, err := br.R.Read(buf)
	br.N -= int64(n)
	if err == nil && br.N <= 0 {
		return n, br.Err
	}
	return n, err
}

// TrickleReader returns at most N bytes per Read call from R.
// It is used to exercise decoders with input that arrives in tiny pieces.
type TrickleReader struct {
	R io.Reader
	N int
}

func (tr *TrickleReader) Read(buf []byte) (int, error) {
	if len(buf) > tr.N {
		buf = buf[:tr.N]
	}
	return tr.R.Read(buf)
}
