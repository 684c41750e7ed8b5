// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package gzip implements a streaming decoder for a single gzip member,
// as specified in RFC 1952.
//
// The member body is decompressed incrementally with package flate. The
// CRC-32 and size recorded in the footer are verified, and any data after
// the footer is rejected, since concatenated members are not supported.
package gzip

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/dsnet/golib/errs"
	hashutil "github.com/dsnet/golib/hashmerge"

	"github.com/dsnet/gzstream/flate"
	"github.com/dsnet/gzstream/internal/errors"
)

const footerSize = 8

func errorf(code int, format string, args ...interface{}) error {
	return errors.Error{Code: code, Pkg: "gzip", Msg: fmt.Sprintf(format, args...)}
}

// ReaderConfig configures a Reader. The zero value selects the defaults.
type ReaderConfig struct {
	// ChunkSize is the maximum size of each chunk returned by NextChunk.
	// It defaults to flate.DefaultChunkSize.
	ChunkSize int

	// BufferSize is the size of the read buffer placed in front of the
	// underlying io.Reader. It defaults to flate.DefaultBufferSize.
	BufferSize int

	_ struct{} // Blank field to prevent unkeyed struct literals
}

// Reader decompresses a single gzip member read from an io.Reader.
//
// Chunks of decompressed data are released as soon as they are decoded, so
// data may be returned before an integrity error in the footer is detected.
// Callers should treat the data as tentative until io.EOF is returned.
type Reader struct {
	rd     *bufio.Reader
	fr     *flate.Reader
	hdr    *Header
	digest uint32 // CRC-32, IEEE polynomial, of the data decoded so far
	size   int64  // Number of bytes decoded so far
	ftrCnt int64  // Number of footer bytes consumed
	toRead []byte // Uncompressed data ready to be emitted from Read
	err    error  // Persistent error
}

// Open parses the gzip header from r and returns a Reader for the member
// body. A nil conf selects the defaults.
func Open(r io.Reader, conf *ReaderConfig) (*Reader, error) {
	var fconf flate.ReaderConfig
	bufSize := flate.DefaultBufferSize
	if conf != nil {
		fconf.ChunkSize = conf.ChunkSize
		fconf.BufferSize = conf.BufferSize
		if conf.BufferSize > 0 {
			bufSize = conf.BufferSize
		}
	}

	zr := new(Reader)
	zr.rd = bufio.NewReaderSize(r, bufSize)
	fr, err := flate.NewReader(zr.rd, &fconf)
	if err != nil {
		return nil, err
	}
	zr.fr = fr
	if zr.hdr, err = readHeader(zr.rd); err != nil {
		return nil, err
	}
	return zr, nil
}

// Header returns the parsed member header.
func (zr *Reader) Header() *Header { return zr.hdr }

// NextChunk returns the next chunk of decompressed data. The returned slice
// is owned by the caller. It returns io.EOF once the footer has been verified
// and the end of the input reached.
func (zr *Reader) NextChunk() ([]byte, error) {
	if len(zr.toRead) > 0 {
		chunk := zr.toRead
		zr.toRead = nil
		return chunk, nil
	}
	if zr.err != nil {
		return nil, zr.err
	}

	chunk, err := zr.fr.NextChunk()
	switch err {
	case nil:
		zr.digest = hashutil.CombineCRC32(crc32.IEEE, zr.digest, crc32.ChecksumIEEE(chunk), int64(len(chunk)))
		zr.size += int64(len(chunk))
		return chunk, nil
	case io.EOF:
		if err = zr.readFooter(); err == nil {
			err = io.EOF
		}
	}
	zr.err = err
	return nil, err
}

func (zr *Reader) Read(buf []byte) (int, error) {
	for len(zr.toRead) == 0 {
		chunk, err := zr.NextChunk()
		if err != nil {
			return 0, err
		}
		zr.toRead = chunk
	}
	cnt := copy(buf, zr.toRead)
	zr.toRead = zr.toRead[cnt:]
	return cnt, nil
}

// Close ends decompression. It returns the persistent error, if any, unless
// the member was decoded and verified successfully. Later reads fail.
func (zr *Reader) Close() error {
	if zr.err == io.EOF || zr.err == io.ErrClosedPipe {
		zr.toRead = nil // Make sure future reads fail
		zr.err = io.ErrClosedPipe
		return nil
	}
	return zr.err // Return the persistent error
}

// InputOffset reports the number of compressed bytes consumed, including
// the header and footer.
func (zr *Reader) InputOffset() int64 {
	return zr.hdr.size + zr.fr.InputOffset + zr.ftrCnt
}

// OutputOffset reports the number of bytes decompressed so far.
func (zr *Reader) OutputOffset() int64 { return zr.size }

// readFooter verifies the footer and that no data follows it.
func (zr *Reader) readFooter() (err error) {
	defer errs.Recover(&err)
	r := io.MultiReader(bytes.NewReader(zr.fr.Remaining()), zr.rd)

	var ftr [footerSize]byte
	if _, err := io.ReadFull(r, ftr[:]); err != nil {
		errs.Panic(readError(err, "footer"))
	}
	zr.ftrCnt = footerSize

	crc := binary.LittleEndian.Uint32(ftr[0:4])
	size := binary.LittleEndian.Uint32(ftr[4:8])
	errs.Assert(crc == zr.digest,
		errorf(errors.Integrity, "CRC-32 mismatch: got %#08x, want %#08x", zr.digest, crc))
	errs.Assert(size == uint32(zr.size),
		errorf(errors.Integrity, "size mismatch: got %d, want %d", uint32(zr.size), size))

	// Exactly one member is supported.
	var b [1]byte
	switch n, err := io.ReadFull(r, b[:]); {
	case n > 0:
		errs.Panic(errorf(errors.MalformedFooter, "unexpected data after the footer (multiple members are not supported)"))
	case err != io.EOF:
		errs.Panic(readError(err, "trailer"))
	}
	return nil
}
