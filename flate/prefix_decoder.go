// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"github.com/dsnet/gzstream/internal"
	"github.com/dsnet/gzstream/internal/errors"
)

const (
	prefixCountBits  = 4
	prefixSymbolBits = 28

	prefixCountMask    = (1 << prefixCountBits) - 1
	prefixMaxChunkBits = 9 // This can be tuned for better performance
)

type prefixCode struct {
	sym uint32 // The symbol being mapped
	val uint32 // Value of the prefix code, most significant bit first
	len uint32 // Bit length of the prefix code
}

// prefixDecoder maps LSB-first bit patterns to symbols using a two-level
// lookup table. Each entry holds sym<<prefixCountBits | len. An entry whose
// length exceeds chunkBits instead holds the index of a link table that is
// indexed by the following bits.
type prefixDecoder struct {
	chunks    []uint32   // First-level lookup map
	links     [][]uint32 // Second-level lookup map
	chunkMask uint32     // Mask the width of the chunks table
	linkMask  uint32     // Mask the width of the link table
	numSyms   uint32     // Number of symbols
	chunkBits uint32     // Bit-width of the chunks table
	minBits   uint32     // The minimum number of bits to safely make progress
}

// generateCodes assigns canonical prefix codes (RFC section 3.2.2) to codes,
// which must be sorted by symbol and have non-zero lengths. The first code of
// a given length is the first code of the previous length plus the number of
// codes of the previous length, shifted left by one. Codes of the same length
// are assigned consecutively in increasing symbol order.
//
// It reports an error if the lengths over-subscribe or under-subscribe the
// code space.
func generateCodes(codes []prefixCode) error {
	if len(codes) == 0 {
		return nil
	}

	var bitCnts [maxPrefixBits + 1]uint32
	var maxBits uint32
	symLast := -1
	for _, c := range codes {
		if c.len == 0 || c.len > maxPrefixBits || int(c.sym) <= symLast {
			return errorf(errors.Internal, "unsorted or invalid prefix codes")
		}
		if maxBits < c.len {
			maxBits = c.len
		}
		bitCnts[c.len]++
		symLast = int(c.sym)
	}

	var nextCodes [maxPrefixBits + 1]uint32
	var code uint32
	for i := uint32(1); i <= maxBits; i++ {
		code <<= 1
		nextCodes[i] = code
		code += bitCnts[i]
	}
	switch {
	case code > 1<<maxBits:
		return errorf(errors.InvalidHuffmanTable, "over-subscribed code with %d symbols", len(codes))
	case code < 1<<maxBits:
		return errorf(errors.InvalidHuffmanTable, "under-subscribed code with %d symbols", len(codes))
	}

	for i, c := range codes {
		codes[i].val = nextCodes[c.len]
		nextCodes[c.len]++
	}
	return nil
}

// Init initializes prefixDecoder according to the codes provided.
// The symbols provided must be unique and in ascending order.
// An empty list of codes produces a decoder that fails on every use.
func (pd *prefixDecoder) Init(codes []prefixCode) {
	if len(codes) == 0 {
		*pd = prefixDecoder{chunks: pd.chunks[:0], links: pd.links[:0]}
		return
	}
	if err := generateCodes(codes); err != nil {
		errors.Panic(err)
	}

	var minBits, maxBits uint32 = maxPrefixBits, 0
	for _, c := range codes {
		if minBits > c.len {
			minBits = c.len
		}
		if maxBits < c.len {
			maxBits = c.len
		}
	}

	// Allocate chunks table.
	pd.numSyms = uint32(len(codes))
	pd.minBits = minBits
	pd.chunkBits = maxBits
	if pd.chunkBits > prefixMaxChunkBits {
		pd.chunkBits = prefixMaxChunkBits
	}
	numChunks := 1 << pd.chunkBits
	pd.chunks = allocUint32s(pd.chunks, numChunks)
	pd.chunkMask = uint32(numChunks - 1)

	// Allocate links tables if necessary. Canonical codes place every code
	// longer than chunkBits after all of the shorter ones, so the link tables
	// cover a contiguous range of chunk prefixes starting at baseCode.
	pd.links = pd.links[:0]
	pd.linkMask = 0
	if pd.chunkBits < maxBits {
		numLinks := 1 << (maxBits - pd.chunkBits)
		pd.linkMask = uint32(numLinks - 1)

		baseCode := uint32(numChunks)
		for _, c := range codes {
			if c.len > pd.chunkBits {
				if p := c.val >> (c.len - pd.chunkBits); p < baseCode {
					baseCode = p
				}
			}
		}
		pd.links = extendSliceUint32s(pd.links, numChunks-int(baseCode))
		for linkIdx := range pd.links {
			code := internal.ReverseUint32N(baseCode+uint32(linkIdx), uint(pd.chunkBits))
			pd.links[linkIdx] = allocUint32s(pd.links[linkIdx], numLinks)
			pd.chunks[code] = uint32(linkIdx<<prefixCountBits) | (pd.chunkBits + 1)
		}
	}

	// Fill out chunks and links tables with values.
	for _, c := range codes {
		chunk := c.sym<<prefixCountBits | c.len
		rev := internal.ReverseUint32N(c.val, uint(c.len))
		if c.len <= pd.chunkBits {
			skip := 1 << c.len
			for i := int(rev); i < len(pd.chunks); i += skip {
				pd.chunks[i] = chunk
			}
		} else {
			linkIdx := pd.chunks[rev&pd.chunkMask] >> prefixCountBits
			links := pd.links[linkIdx]
			skip := 1 << (c.len - pd.chunkBits)
			for i := int(rev >> pd.chunkBits); i < len(links); i += skip {
				links[i] = chunk
			}
		}
	}
}
