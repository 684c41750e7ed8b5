// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "github.com/dsnet/gzstream/internal/errors"

// dictDecoder is the sliding window of recently produced output.
// It is a ring buffer with two cursors: wrPos, where new bytes are written,
// and rdPos, where bytes not yet handed to the caller begin. Bytes that have
// been flushed stay in the ring and remain valid targets for backward copies
// until they are overwritten.
//
// Invariant: 0 <= pend <= len(hist)
type dictDecoder struct {
	hist  []byte // Sliding window history
	wrPos int    // Current output position in hist
	rdPos int    // Start of the data not yet flushed
	pend  int    // Number of bytes written but not yet flushed
	total int64  // Total number of bytes ever written
}

func (dd *dictDecoder) Init(size int) {
	*dd = dictDecoder{hist: dd.hist}
	if cap(dd.hist) < size {
		dd.hist = make([]byte, size)
	}
	dd.hist = dd.hist[:size]
}

// HistSize reports the amount of history available to backward copies.
func (dd *dictDecoder) HistSize() int {
	if dd.total < int64(len(dd.hist)) {
		return int(dd.total)
	}
	return len(dd.hist)
}

// FlushSize reports the number of bytes that can be flushed by ReadFlush.
func (dd *dictDecoder) FlushSize() int {
	return dd.pend
}

// AvailSize reports the number of bytes that can be written without
// overwriting data that has not been flushed.
func (dd *dictDecoder) AvailSize() int {
	return len(dd.hist) - dd.pend
}

// WriteSlice returns a slice of the available buffer to write data to.
//
// This invariant will be kept: len(s) <= AvailSize()
func (dd *dictDecoder) WriteSlice() []byte {
	n := len(dd.hist) - dd.wrPos
	if avail := dd.AvailSize(); n > avail {
		n = avail
	}
	return dd.hist[dd.wrPos : dd.wrPos+n]
}

// WriteMark advances the writer pointer by cnt.
//
// This invariant must be kept: 0 <= cnt <= len(WriteSlice())
func (dd *dictDecoder) WriteMark(cnt int) {
	dd.wrPos += cnt
	if dd.wrPos == len(dd.hist) {
		dd.wrPos = 0
	}
	dd.pend += cnt
	dd.total += int64(cnt)
}

// WriteLit writes a single literal byte.
//
// This invariant must be kept: 0 < AvailSize()
func (dd *dictDecoder) WriteLit(c byte) {
	dd.hist[dd.wrPos] = c
	dd.WriteMark(1)
}

// WriteCopy copies a string at a given (distance, length) to the output.
// A length larger than the distance repeats the copied bytes, so that
// (dist: 1, length: n) produces n copies of the previous byte.
//
// This invariant must be kept: length <= AvailSize()
func (dd *dictDecoder) WriteCopy(dist, length int) error {
	if dist <= 0 {
		return errorf(errors.InvalidBackReference, "zero distance")
	}
	if dist > dd.HistSize() {
		return errorf(errors.InvalidBackReference, "distance %d exceeds %d bytes of history", dist, dd.HistSize())
	}

	rdPos := dd.wrPos - dist
	if rdPos < 0 {
		rdPos += len(dd.hist)
	}
	for length > 0 {
		// Never copy more than dist bytes at once, so that the source is
		// always data that was written before this segment began.
		n := length
		if n > dist {
			n = dist
		}
		if m := len(dd.hist) - dd.wrPos; n > m {
			n = m
		}
		if m := len(dd.hist) - rdPos; n > m {
			n = m
		}
		copy(dd.hist[dd.wrPos:dd.wrPos+n], dd.hist[rdPos:rdPos+n])
		if rdPos += n; rdPos == len(dd.hist) {
			rdPos = 0
		}
		dd.WriteMark(n)
		length -= n
	}
	return nil
}

// ReadFlush returns up to max bytes of the data that has not yet been
// flushed and marks it as flushed. The returned slice aliases the window and
// is only valid until the next write. Fewer bytes than available may be
// returned when the data wraps around the end of the ring; callers loop
// until FlushSize reports zero.
func (dd *dictDecoder) ReadFlush(max int) []byte {
	n := dd.pend
	if n > max {
		n = max
	}
	if m := len(dd.hist) - dd.rdPos; n > m {
		n = m
	}
	toRead := dd.hist[dd.rdPos : dd.rdPos+n]
	if dd.rdPos += n; dd.rdPos == len(dd.hist) {
		dd.rdPos = 0
	}
	dd.pend -= n
	return toRead
}
