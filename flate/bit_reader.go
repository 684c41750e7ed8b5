// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "github.com/dsnet/gzstream/internal/errors"

// The bitReader decodes LSB-first bit fields from a buffer of pending input.
// It pulls in one byte at a time, and only when the requested field cannot be
// satisfied from the bits already buffered. Thus, it never holds more than 7
// bits beyond what has been consumed, and once the DEFLATE stream ends the
// unused input starts exactly at buf[pos:].
//
// When the pending input runs dry, the reader panics with errShortInput.
// The Decoder recovers from this and rewinds to the last checkpoint taken
// with save, so partially decoded fields are simply decoded again once more
// input is fed.
type bitReader struct {
	buf     []byte // Pending input
	pos     int    // Number of bytes of buf already loaded into bufBits
	bufBits uint64 // Buffer to hold some bits
	numBits uint   // Number of valid bits in bufBits
	offset  int64  // Number of input bytes discarded before buf[0]
	atEOF   bool   // No more input will be fed
}

// bitCheckpoint is the state needed to rewind a bitReader.
type bitCheckpoint struct {
	pos     int
	bufBits uint64
	numBits uint
}

func (br *bitReader) Init() {
	*br = bitReader{buf: br.buf[:0]}
}

// Feed appends p to the pending input, first discarding bytes that have
// already been loaded. It must only be called at a checkpoint.
func (br *bitReader) Feed(p []byte) {
	if br.pos > 0 {
		n := copy(br.buf, br.buf[br.pos:])
		br.buf = br.buf[:n]
		br.offset += int64(br.pos)
		br.pos = 0
	}
	br.buf = append(br.buf, p...)
}

func (br *bitReader) save() bitCheckpoint {
	return bitCheckpoint{pos: br.pos, bufBits: br.bufBits, numBits: br.numBits}
}

func (br *bitReader) restore(c bitCheckpoint) {
	br.pos, br.bufBits, br.numBits = c.pos, c.bufBits, c.numBits
}

// Offset reports the number of input bytes consumed so far.
func (br *bitReader) Offset() int64 {
	return br.offset + int64(br.pos)
}

// Remaining returns the pending input that has not been loaded.
func (br *bitReader) Remaining() []byte {
	return br.buf[br.pos:]
}

// FeedBits ensures that at least nb bits exist in the bit buffer.
func (br *bitReader) FeedBits(nb uint) {
	for br.numBits < nb {
		if br.pos >= len(br.buf) {
			errors.Panic(errShortInput)
		}
		br.bufBits |= uint64(br.buf[br.pos]) << br.numBits
		br.numBits += 8
		br.pos++
	}
}

// Read copies up to len(buf) raw bytes into buf. The bit buffer must be empty,
// which is the case right after the LEN and NLEN fields of a stored block.
func (br *bitReader) Read(buf []byte) int {
	if br.numBits != 0 {
		errors.Panic(errorf(errors.Internal, "non-aligned bit buffer"))
	}
	if br.pos >= len(br.buf) {
		errors.Panic(errShortInput)
	}
	cnt := copy(buf, br.buf[br.pos:])
	br.pos += cnt
	return cnt
}

// ReadBits reads nb bits in LSB order from the underlying reader.
func (br *bitReader) ReadBits(nb uint) uint {
	br.FeedBits(nb)
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// ReadPads reads 0-7 bits from the bit buffer to achieve byte-alignment.
func (br *bitReader) ReadPads() uint {
	nb := br.numBits % 8
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// ReadSymbol reads the next prefix symbol using the provided prefixDecoder.
func (br *bitReader) ReadSymbol(pd *prefixDecoder) uint {
	if len(pd.chunks) == 0 {
		errors.Panic(errorf(errors.InvalidHuffmanTable, "decode with empty tree"))
	}

	nb := uint(pd.minBits)
	for {
		br.FeedBits(nb)
		chunk := pd.chunks[uint32(br.bufBits)&pd.chunkMask]
		nb = uint(chunk & prefixCountMask)
		if nb > uint(pd.chunkBits) {
			linkIdx := chunk >> prefixCountBits
			chunk = pd.links[linkIdx][uint32(br.bufBits>>pd.chunkBits)&pd.linkMask]
			nb = uint(chunk & prefixCountMask)
		}
		if nb <= br.numBits {
			br.bufBits >>= nb
			br.numBits -= nb
			return uint(chunk >> prefixCountBits)
		}
	}
}
