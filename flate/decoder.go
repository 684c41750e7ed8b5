// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"io"

	"github.com/dsnet/gzstream/internal/errors"
)

// DecoderConfig configures a Decoder. The zero value selects the defaults.
type DecoderConfig struct {
	// ChunkSize is the maximum size of each output chunk.
	// It defaults to DefaultChunkSize and may not exceed MaxChunkSize.
	ChunkSize int
}

func (c *DecoderConfig) chunkSize() (int, error) {
	if c == nil || c.ChunkSize == 0 {
		return DefaultChunkSize, nil
	}
	if c.ChunkSize < 0 || c.ChunkSize > MaxChunkSize {
		return 0, errorf(errors.Invalid, "chunk size %d out of range [1, %d]", c.ChunkSize, MaxChunkSize)
	}
	return c.ChunkSize, nil
}

// Decoder is a resumable DEFLATE decoder.
//
// Input is supplied with Feed, and output is retrieved one chunk at a time
// with Next. Every chunk is exactly ChunkSize bytes long, except for the last
// chunk of the stream, which may be shorter. Empty chunks are never returned.
//
// The decoder makes progress in units: a block header (including the entire
// prefix table description of a dynamic block), a single literal, a single
// length and distance pair, or a run of stored bytes. A unit's input is fully
// read before it has any effect, so when the input runs out part way through
// a unit, the decoder rewinds to the end of the previous unit and reports
// ErrNeedInput.
type Decoder struct {
	rd   bitReader     // Input source
	ckpt bitCheckpoint // Input position after the last completed unit
	dict dictDecoder   // Sliding window of recent output

	step   func(*Decoder) // Single unit of decompression work (can panic)
	stage  string         // Description of the field being decoded
	blkLen int            // Uncompressed bytes left to read in a stored block
	last   bool           // Last block bit detected
	done   bool           // Final block has been decoded
	err    error          // Persistent error, io.EOF once done
	srcErr error          // Reported instead of truncation when input runs out

	litTree     *prefixDecoder // Literal and length symbol prefix decoder
	distTree    *prefixDecoder // Backward distance symbol prefix decoder
	dynLitTree  prefixDecoder  // Storage for dynamic block literal codes
	dynDistTree prefixDecoder  // Storage for dynamic block distance codes
	clenTree    prefixDecoder  // Storage for the code-lengths codes

	chunkSize int
	out       []byte // Output chunk being assembled
	outOffset int64  // Total number of bytes returned by Next
}

// NewDecoder returns a Decoder ready to decode a new DEFLATE stream.
// A nil conf selects the defaults.
func NewDecoder(conf *DecoderConfig) (*Decoder, error) {
	n, err := conf.chunkSize()
	if err != nil {
		return nil, err
	}
	d := &Decoder{chunkSize: n}
	d.Reset()
	return d, nil
}

// Reset discards all state, including pending input, so that d may decode a
// new stream. The chunk size is retained.
func (d *Decoder) Reset() {
	*d = Decoder{
		rd:          d.rd,
		dict:        d.dict,
		step:        (*Decoder).readBlockHeader,
		dynLitTree:  d.dynLitTree,
		dynDistTree: d.dynDistTree,
		clenTree:    d.clenTree,
		chunkSize:   d.chunkSize,
	}
	d.rd.Init()
	d.ckpt = d.rd.save()
	d.dict.Init(maxHistSize)
}

// Feed appends compressed input. The data is copied, so p may be reused
// once Feed returns.
func (d *Decoder) Feed(p []byte) {
	d.rd.Feed(p)
	d.ckpt = d.rd.save()
}

// CloseInput declares that no more input will be fed. From then on, running
// out of input is reported as a truncated stream instead of ErrNeedInput.
func (d *Decoder) CloseInput() {
	d.rd.atEOF = true
}

// CloseWithError is like CloseInput, but running out of input is reported
// as err instead of a truncated stream. It is used when whatever supplies the
// input has failed. The input fed so far is still decoded.
func (d *Decoder) CloseWithError(err error) {
	d.rd.atEOF = true
	if d.srcErr == nil {
		d.srcErr = err
	}
}

// Next returns the next output chunk.
//
// It returns ErrNeedInput if a chunk cannot be completed with the input fed
// so far, and io.EOF once the end of the stream has been reached and all
// output has been returned. Any other error means the stream is invalid;
// chunks decoded before the error are still returned first. Once Next has
// returned io.EOF or an error, it returns the same value forever.
func (d *Decoder) Next() ([]byte, error) {
	for {
		for len(d.out) < d.chunkSize && d.dict.FlushSize() > 0 {
			d.out = append(d.out, d.dict.ReadFlush(d.chunkSize-len(d.out))...)
		}
		if len(d.out) == d.chunkSize || (d.err != nil && len(d.out) > 0) {
			chunk := d.out
			d.out = nil
			d.outOffset += int64(len(chunk))
			return chunk, nil
		}
		if d.err != nil {
			return nil, d.err
		}
		if d.out == nil {
			d.out = make([]byte, 0, d.chunkSize)
		}

		err := d.runStep()
		if err == errShortInput {
			d.rd.restore(d.ckpt)
			if !d.rd.atEOF {
				return nil, ErrNeedInput
			}
			err = d.srcErr
			if err == nil {
				err = errorf(errors.TruncatedInput, "input ended in %s", d.stage)
			}
		}
		switch {
		case err != nil:
			d.err = err
		case d.done:
			d.err = io.EOF
		}
	}
}

// Done reports whether the final block has been decoded.
// All output may not have been returned by Next yet.
func (d *Decoder) Done() bool { return d.done }

// Remaining returns the input that follows the end of the DEFLATE stream.
// It is only meaningful once Done reports true.
func (d *Decoder) Remaining() []byte { return d.rd.Remaining() }

// InputOffset reports the number of input bytes consumed.
func (d *Decoder) InputOffset() int64 { return d.rd.Offset() }

// OutputOffset reports the number of output bytes returned by Next.
func (d *Decoder) OutputOffset() int64 { return d.outOffset }

func (d *Decoder) runStep() (err error) {
	defer errors.Recover(&err)
	d.step(d)
	return nil
}

// commit marks the end of a unit of work.
func (d *Decoder) commit() {
	d.ckpt = d.rd.save()
}

// endBlock transitions to the next block, or finishes the stream if the
// current block was the last one.
func (d *Decoder) endBlock() {
	if d.last {
		d.rd.ReadPads()
		d.done = true
		d.step = nil
		return
	}
	d.step = (*Decoder).readBlockHeader
}

// readBlockHeader reads the block header according to RFC section 3.2.3.
func (d *Decoder) readBlockHeader() {
	d.stage = "block header"
	last := d.rd.ReadBits(1) == 1
	switch d.rd.ReadBits(2) {
	case 0:
		// Raw block (RFC section 3.2.4).
		d.stage = "stored block header"
		d.rd.ReadPads()
		n := uint16(d.rd.ReadBits(16))
		nn := uint16(d.rd.ReadBits(16))
		if n^nn != 0xffff {
			errors.Panic(errorf(errors.MalformedStoredBlock, "LEN %#04x does not match NLEN %#04x", n, nn))
		}
		d.blkLen = int(n)
		d.step = (*Decoder).readRawData
	case 1:
		// Fixed prefix block (RFC section 3.2.6).
		d.litTree, d.distTree = &litTree, &distTree
		d.step = (*Decoder).readBlock
	case 2:
		// Dynamic prefix block (RFC section 3.2.7).
		d.stage = "dynamic block header"
		d.readPrefixCodes()
		d.litTree, d.distTree = &d.dynLitTree, &d.dynDistTree
		d.step = (*Decoder).readBlock
	default:
		// Reserved block (RFC section 3.2.3).
		errors.Panic(errorf(errors.InvalidSymbol, "reserved block type"))
	}
	d.last = last
	d.commit()
}

// readRawData reads raw data according to RFC section 3.2.4.
func (d *Decoder) readRawData() {
	d.stage = "stored block data"
	for d.blkLen > 0 {
		buf := d.dict.WriteSlice()
		if len(buf) == 0 {
			return // Window is full; continue once it has been flushed
		}
		if len(buf) > d.blkLen {
			buf = buf[:d.blkLen]
		}
		cnt := d.rd.Read(buf)
		d.blkLen -= cnt
		d.dict.WriteMark(cnt)
		d.commit()
	}
	d.endBlock()
	d.commit()
}

// readBlock reads block commands according to RFC section 3.2.3.
// It returns early whenever the window could not hold one more maximal copy,
// so that the output can be flushed first.
func (d *Decoder) readBlock() {
	d.stage = "compressed block"
	for d.dict.AvailSize() >= maxMatchLen {
		litSym := d.rd.ReadSymbol(d.litTree)
		switch {
		case litSym < endBlockSym:
			d.dict.WriteLit(byte(litSym))
		case litSym == endBlockSym:
			d.endBlock()
			d.commit()
			return
		case litSym < maxNumLitSyms:
			// Decode the copy length.
			rec := lenLUT[litSym-257]
			length := int(rec.base) + int(d.rd.ReadBits(uint(rec.bits)))

			// Read the distance symbol.
			distSym := d.rd.ReadSymbol(d.distTree)
			if distSym >= maxNumDistSyms {
				errors.Panic(errorf(errors.InvalidSymbol, "distance symbol %d", distSym))
			}

			// Decode the copy distance.
			rec = distLUT[distSym]
			dist := int(rec.base) + int(d.rd.ReadBits(uint(rec.bits)))

			// Perform a backwards copy according to RFC section 3.2.3.
			if err := d.dict.WriteCopy(dist, length); err != nil {
				errors.Panic(err)
			}
		default:
			errors.Panic(errorf(errors.InvalidSymbol, "literal/length symbol %d", litSym))
		}
		d.commit()
	}
}
