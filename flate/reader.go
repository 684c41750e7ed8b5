// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"io"

	"github.com/dsnet/gzstream/internal/errors"
)

// maxConsecutiveEmptyReads is the number of (0, nil) results from the
// underlying reader tolerated before giving up.
const maxConsecutiveEmptyReads = 100

// ReaderConfig configures a Reader. The zero value selects the defaults.
type ReaderConfig struct {
	// ChunkSize is the maximum size of each chunk returned by NextChunk.
	ChunkSize int

	// BufferSize is the number of bytes requested from the underlying
	// io.Reader at a time. It defaults to DefaultBufferSize.
	BufferSize int

	_ struct{} // Blank field to prevent unkeyed struct literals
}

// Reader decompresses a DEFLATE stream read from an io.Reader.
//
// The Reader only reads from the underlying io.Reader when the decoder has
// run out of input, and it never reads past what it was asked to buffer.
// Input that was read but follows the end of the DEFLATE stream is available
// from Remaining once the stream has been fully decoded.
type Reader struct {
	InputOffset  int64 // Total number of bytes consumed by the decoder
	OutputOffset int64 // Total number of bytes emitted from Read or NextChunk

	rd      io.Reader // Underlying source of compressed data
	dec     Decoder   // Resumable decoder state
	buf     []byte    // Scratch buffer for reading from rd
	toRead  []byte    // Uncompressed data ready to be emitted from Read
	empties int       // Consecutive empty reads from rd
	err     error     // Persistent error
}

// NewReader returns a Reader that decompresses the DEFLATE stream in r.
// A nil conf selects the defaults.
func NewReader(r io.Reader, conf *ReaderConfig) (*Reader, error) {
	var dconf DecoderConfig
	bufSize := DefaultBufferSize
	if conf != nil {
		dconf.ChunkSize = conf.ChunkSize
		switch {
		case conf.BufferSize < 0:
			return nil, errorf(errors.Invalid, "negative buffer size %d", conf.BufferSize)
		case conf.BufferSize > 0:
			bufSize = conf.BufferSize
		}
	}
	chunkSize, err := dconf.chunkSize()
	if err != nil {
		return nil, err
	}

	fr := &Reader{buf: make([]byte, bufSize)}
	fr.dec.chunkSize = chunkSize
	fr.Reset(r)
	return fr, nil
}

// Reset discards the Reader's state and makes it equivalent to the result of
// NewReader with r and the same configuration.
func (fr *Reader) Reset(r io.Reader) error {
	*fr = Reader{rd: r, dec: fr.dec, buf: fr.buf}
	if fr.dec.chunkSize == 0 {
		fr.dec.chunkSize = DefaultChunkSize
	}
	if len(fr.buf) == 0 {
		fr.buf = make([]byte, DefaultBufferSize)
	}
	fr.dec.Reset()
	return nil
}

// NextChunk returns the next chunk of decompressed data. The returned slice
// is owned by the caller. It returns io.EOF at the end of the stream.
// Any data buffered by a previous call to Read is returned first.
func (fr *Reader) NextChunk() ([]byte, error) {
	if len(fr.toRead) > 0 {
		chunk := fr.toRead
		fr.toRead = nil
		fr.OutputOffset += int64(len(chunk))
		return chunk, nil
	}
	if fr.err != nil {
		return nil, fr.err
	}
	chunk, err := fr.decode()
	if err != nil {
		fr.err = err
		return nil, err
	}
	fr.OutputOffset += int64(len(chunk))
	return chunk, nil
}

func (fr *Reader) Read(buf []byte) (int, error) {
	for {
		if len(fr.toRead) > 0 {
			cnt := copy(buf, fr.toRead)
			fr.toRead = fr.toRead[cnt:]
			fr.OutputOffset += int64(cnt)
			return cnt, nil
		}
		if fr.err != nil {
			return 0, fr.err
		}
		fr.toRead, fr.err = fr.decode()
	}
}

// Close ends decompression. It returns the persistent error, if any, unless
// the stream was decoded successfully. Later reads fail.
func (fr *Reader) Close() error {
	if fr.err == io.EOF || fr.err == io.ErrClosedPipe {
		fr.toRead = nil // Make sure future reads fail
		fr.err = io.ErrClosedPipe
		return nil
	}
	return fr.err // Return the persistent error
}

// Done reports whether the end of the DEFLATE stream has been decoded.
func (fr *Reader) Done() bool { return fr.dec.Done() }

// Remaining returns the bytes read from the underlying io.Reader that follow
// the end of the DEFLATE stream. It is only meaningful once Done reports true.
func (fr *Reader) Remaining() []byte { return fr.dec.Remaining() }

// decode returns the next chunk from the decoder, feeding it from rd as
// often as needed.
func (fr *Reader) decode() ([]byte, error) {
	defer func() { fr.InputOffset = fr.dec.InputOffset() }()
	for {
		chunk, err := fr.dec.Next()
		if err != ErrNeedInput {
			return chunk, err
		}
		fr.fill()
	}
}

// fill reads once from rd into the decoder.
func (fr *Reader) fill() {
	if fr.rd == nil {
		fr.dec.CloseWithError(errorf(errors.Invalid, "no input source"))
		return
	}
	n, err := fr.rd.Read(fr.buf)
	fr.dec.Feed(fr.buf[:n])
	switch {
	case err == io.EOF:
		fr.dec.CloseInput()
	case err != nil:
		fr.dec.CloseWithError(errors.Error{Code: errors.Source, Pkg: "flate", Err: err})
	case n == 0:
		if fr.empties++; fr.empties >= maxConsecutiveEmptyReads {
			fr.dec.CloseWithError(errors.Error{Code: errors.Source, Pkg: "flate", Err: io.ErrNoProgress})
		}
	default:
		fr.empties = 0
	}
}
