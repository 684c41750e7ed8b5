// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzstream

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnet/gzstream/flate"
	gz "github.com/dsnet/gzstream/gzip"
	"github.com/dsnet/gzstream/internal/errors"
	"github.com/dsnet/gzstream/internal/testutil"
)

// sliceSource hands out fixed chunks followed by err.
type sliceSource struct {
	chunks []string
	err    error
}

func (s *sliceSource) NextChunk() ([]byte, error) {
	if len(s.chunks) == 0 {
		return nil, s.err
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return []byte(c), nil
}

func mustGzip(data []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestChunkReaderFill(t *testing.T) {
	cr := NewChunkReader(&sliceSource{chunks: []string{"hello", ", ", "world"}, err: io.EOF})

	buf, err := cr.Fill()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	// Fill does not pull a new chunk while data is buffered.
	cr.Consume(3)
	buf, err = cr.Fill()
	require.NoError(t, err)
	assert.Equal(t, "lo", string(buf))
	assert.Equal(t, 2, cr.Buffered())

	cr.Consume(2)
	buf, err = cr.Fill()
	require.NoError(t, err)
	assert.Equal(t, ", ", string(buf))

	rest, err := ioutil.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, ", world", string(rest))

	_, err = cr.Fill()
	assert.Equal(t, io.EOF, err)
	assert.Panics(t, func() { cr.Consume(1) })
}

func TestChunkReaderReadByte(t *testing.T) {
	cr := NewChunkReader(&sliceSource{chunks: []string{"ab", "c"}, err: io.EOF})
	var got []byte
	for {
		c, err := cr.ReadByte()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, c)
	}
	assert.Equal(t, "abc", string(got))
	assert.Implements(t, (*io.ByteReader)(nil), cr)
	assert.Implements(t, (*io.WriterTo)(nil), cr)
}

func TestChunkReaderError(t *testing.T) {
	errBroken := fmt.Errorf("broken source")
	cr := NewChunkReader(&sliceSource{chunks: []string{"data"}, err: errBroken})

	var buf bytes.Buffer
	n, err := cr.WriteTo(&buf)
	assert.Equal(t, errBroken, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "data", buf.String())

	// The error is persistent.
	_, err = cr.Read(make([]byte, 1))
	assert.Equal(t, errBroken, err)
}

func TestChunkReaderGzip(t *testing.T) {
	data := testutil.ResizeData([]byte("streaming gzip decoder "), 200000)
	zr, err := gz.Open(bytes.NewReader(mustGzip(data)), &gz.ReaderConfig{ChunkSize: 1000})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewChunkReader(zr).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.True(t, bytes.Equal(data, buf.Bytes()), "output mismatch")
}

func TestChunkReaderFlate(t *testing.T) {
	// A fixed Huffman block holding "hi".
	input := testutil.MustDecodeBitGen("<<< < 1 01 > 10011000 10011001 0000000")
	fr, err := flate.NewReader(bytes.NewReader(input), nil)
	require.NoError(t, err)

	got, err := ioutil.ReadAll(NewChunkReader(fr))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}

func TestChunkReaderCorrupted(t *testing.T) {
	data := []byte(strings.Repeat("abc", 1000))
	input := mustGzip(data)
	input[len(input)-5] ^= 0xff // Corrupt the CRC-32

	zr, err := gz.Open(bytes.NewReader(input), nil)
	require.NoError(t, err)
	got, err := ioutil.ReadAll(NewChunkReader(zr))
	assert.True(t, errors.IsIntegrity(err), "got error %v, want integrity error", err)
	assert.Equal(t, data, got)
}
