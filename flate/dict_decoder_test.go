// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"testing"

	"github.com/dsnet/gzstream/internal/errors"
)

func flushAll(dd *dictDecoder) string {
	var s []byte
	for dd.FlushSize() > 0 {
		s = append(s, dd.ReadFlush(1<<20)...)
	}
	return string(s)
}

func TestDictDecoder(t *testing.T) {
	var dd dictDecoder
	dd.Init(8)

	for _, c := range []byte("ab") {
		dd.WriteLit(c)
	}
	if err := dd.WriteCopy(2, 6); err != nil {
		t.Fatalf("unexpected WriteCopy error: %v", err)
	}
	if got, want := flushAll(&dd), "abababab"; got != want {
		t.Errorf("output mismatch: got %q, want %q", got, want)
	}

	// The window wraps around; flushed bytes remain usable as history.
	if got := dd.HistSize(); got != 8 {
		t.Errorf("history size mismatch: got %d, want 8", got)
	}
	if err := dd.WriteCopy(3, 5); err != nil {
		t.Fatalf("unexpected WriteCopy error: %v", err)
	}
	if got, want := flushAll(&dd), "babba"; got != want {
		t.Errorf("output mismatch: got %q, want %q", got, want)
	}
	if got := dd.AvailSize(); got != 8 {
		t.Errorf("available size mismatch: got %d, want 8", got)
	}
}

func TestDictDecoderWrap(t *testing.T) {
	var dd dictDecoder
	dd.Init(8)
	for _, c := range []byte("abcdef") {
		dd.WriteLit(c)
	}
	if got, want := flushAll(&dd), "abcdef"; got != want {
		t.Errorf("output mismatch: got %q, want %q", got, want)
	}
	if err := dd.WriteCopy(4, 5); err != nil {
		t.Fatalf("unexpected WriteCopy error: %v", err)
	}
	if got := dd.AvailSize(); got != 3 {
		t.Errorf("available size mismatch: got %d, want 3", got)
	}
	if got, want := flushAll(&dd), "cdefc"; got != want {
		t.Errorf("output mismatch: got %q, want %q", got, want)
	}
}

func TestDictDecoderErrors(t *testing.T) {
	var dd dictDecoder
	dd.Init(8)
	for _, c := range []byte("xyz") {
		dd.WriteLit(c)
	}

	for _, dist := range []int{0, 4, 9} {
		if err := dd.WriteCopy(dist, 3); !errors.IsInvalidBackReference(err) {
			t.Errorf("distance %d, error mismatch: got %v, want invalid back-reference", dist, err)
		}
	}
	if dd.FlushSize() != 3 {
		t.Errorf("failed copies changed the window: flush size %d, want 3", dd.FlushSize())
	}
	if err := dd.WriteCopy(3, 3); err != nil {
		t.Errorf("unexpected WriteCopy error: %v", err)
	}
	if got, want := flushAll(&dd), "xyzxyz"; got != want {
		t.Errorf("output mismatch: got %q, want %q", got, want)
	}
}
