// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzstream

import "io"

// ChunkReader is a buffered reader over a ChunkSource.
//
// Fill exposes the buffered bytes without copying and Consume discards a
// prefix of them, which lets parsers peek at decompressed data. The usual
// io.Reader, io.ByteReader and io.WriterTo methods are built on top.
type ChunkReader struct {
	src ChunkSource
	buf []byte // Unconsumed part of the current chunk
	err error  // Persistent error from src
}

// NewChunkReader returns a ChunkReader that pulls chunks from src.
func NewChunkReader(src ChunkSource) *ChunkReader {
	return &ChunkReader{src: src}
}

// Fill returns the buffered bytes, pulling the next chunk from the source
// when the buffer is empty. The result is only valid until the next call
// to Consume or any read method.
//
// If the buffer is empty and the source is exhausted, it returns io.EOF.
// Errors from the source are returned once all buffered data is consumed.
func (cr *ChunkReader) Fill() ([]byte, error) {
	for len(cr.buf) == 0 {
		if cr.err != nil {
			return nil, cr.err
		}
		cr.buf, cr.err = cr.src.NextChunk()
	}
	return cr.buf, nil
}

// Consume discards the first n bytes returned by the last Fill.
// It panics if n is larger than the buffered amount.
func (cr *ChunkReader) Consume(n int) {
	if n < 0 || n > len(cr.buf) {
		panic("gzstream: consume count out of range")
	}
	cr.buf = cr.buf[n:]
}

// Buffered reports the number of bytes that can be read without pulling
// another chunk.
func (cr *ChunkReader) Buffered() int { return len(cr.buf) }

func (cr *ChunkReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	buf, err := cr.Fill()
	if err != nil {
		return 0, err
	}
	n := copy(p, buf)
	cr.Consume(n)
	return n, nil
}

func (cr *ChunkReader) ReadByte() (byte, error) {
	buf, err := cr.Fill()
	if err != nil {
		return 0, err
	}
	c := buf[0]
	cr.Consume(1)
	return c, nil
}

// WriteTo writes all remaining data to w. A source that ends cleanly is not
// reported as an error.
func (cr *ChunkReader) WriteTo(w io.Writer) (n int64, err error) {
	for {
		buf, err := cr.Fill()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		cnt, err := w.Write(buf)
		n += int64(cnt)
		cr.Consume(cnt)
		if err != nil {
			return n, err
		}
		if cnt < len(buf) {
			return n, io.ErrShortWrite
		}
	}
}
