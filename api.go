// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package gzstream adapts the chunked output of the gzip and flate decoders
// to consumers that want buffered reads.
//
// A decoder hands out its output as a sequence of chunks through the
// ChunkSource interface. ChunkReader turns any ChunkSource into a buffered
// reader with fill and consume semantics, while Pipe runs a ChunkSource on
// its own goroutine so that decoding overlaps with consumption.
package gzstream

import (
	"github.com/dsnet/gzstream/flate"
	"github.com/dsnet/gzstream/gzip"
)

// ChunkSource is implemented by anything that produces decompressed output
// one chunk at a time.
//
// NextChunk returns the next non-empty chunk, which the caller then owns.
// It returns io.EOF after the last chunk. Any other error is persistent and
// is returned by every later call.
type ChunkSource interface {
	NextChunk() ([]byte, error)
}

var (
	_ ChunkSource = (*flate.Reader)(nil)
	_ ChunkSource = (*gzip.Reader)(nil)
	_ ChunkSource = (*Pipe)(nil)
)
