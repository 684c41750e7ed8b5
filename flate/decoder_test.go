// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"bytes"
	"io"
	"testing"

	"github.com/dsnet/gzstream/internal/errors"
	"github.com/dsnet/gzstream/internal/testutil"
)

func TestDecoder(t *testing.T) {
	for i, v := range testVectors {
		for _, step := range []int{0, 1, 3} {
			d, err := NewDecoder(nil)
			if err != nil {
				t.Fatalf("unexpected NewDecoder error: %v", err)
			}

			var output []byte
			input := v.input
			for {
				var chunk []byte
				chunk, err = d.Next()
				if err == ErrNeedInput {
					if len(input) == 0 {
						d.CloseInput()
						continue
					}
					n := step
					if n == 0 || n > len(input) {
						n = len(input)
					}
					d.Feed(input[:n])
					input = input[n:]
					continue
				}
				if err != nil {
					break
				}
				output = append(output, chunk...)
			}
			if err == io.EOF {
				err = nil
			}

			if !sameError(err, v.err) {
				t.Errorf("test %d, step %d, %s\nerror mismatch: got %v, want %v", i, step, v.desc, err, v.err)
			}
			if !bytes.Equal(output, v.output) {
				t.Errorf("test %d, step %d, %s\noutput mismatch:\ngot  %x\nwant %x", i, step, v.desc, output, v.output)
			}
			if v.err == nil && d.InputOffset() != v.inIdx {
				t.Errorf("test %d, step %d, %s\ninput offset mismatch: got %d, want %d", i, step, v.desc, d.InputOffset(), v.inIdx)
			}
			if d.OutputOffset() != v.outIdx {
				t.Errorf("test %d, step %d, %s\noutput offset mismatch: got %d, want %d", i, step, v.desc, d.OutputOffset(), v.outIdx)
			}
		}
	}
}

func TestDecoderStoredBlocks(t *testing.T) {
	data := testutil.NewRand(150000).Bytes(150000)
	input := testutil.StoredBlocks(data, 65535, 65535)

	chunks, err := decodeAll(input, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Errorf("chunk count: got %d, want at least 2", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if len(c) != DefaultChunkSize {
			t.Errorf("chunk %d, length mismatch: got %d, want %d", i, len(c), DefaultChunkSize)
		}
	}
	if got := bytes.Join(chunks, nil); !bytes.Equal(got, data) {
		t.Errorf("output mismatch")
	}
}

func TestDecoderOverlappingCopy(t *testing.T) {
	input := db(`<<<
		< 1 01              # Last, fixed block
		> 10010001 10010010 # Literals: 'a', 'b'
		> 0000100 00001     # Length: 6, Distance: 2
		> 0000000           # EOB marker
	`)
	chunks, err := decodeAll(input, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := string(bytes.Join(chunks, nil)), "abababab"; got != want {
		t.Errorf("output mismatch: got %q, want %q", got, want)
	}
}

func TestDecoderBackReference(t *testing.T) {
	var vectors = []struct {
		desc   string
		input  []byte
		output []byte
	}{{
		desc: "copy before any output",
		input: db(`<<<
			< 1 01          # Last, fixed block
			> 0000001 00000 # Length: 3, Distance: 1
		`),
	}, {
		desc: "copy before start of output",
		input: db(`<<<
			< 1 01          # Last, fixed block
			> 10010001      # Literal: 'a'
			> 0000001 00001 # Length: 3, Distance: 2
		`),
		output: []byte("a"),
	}}

	for i, v := range vectors {
		chunks, err := decodeAll(v.input, 0, 0)
		if !errors.IsInvalidBackReference(err) {
			t.Errorf("test %d, %s\nerror mismatch: got %v, want invalid back-reference", i, v.desc, err)
		}
		if got := bytes.Join(chunks, nil); !bytes.Equal(got, v.output) {
			t.Errorf("test %d, %s\noutput mismatch: got %q, want %q", i, v.desc, got, v.output)
		}
	}
}

func TestDecoderReservedBlock(t *testing.T) {
	d, _ := NewDecoder(nil)
	d.Feed(db(`<<<
		< 1 11 0*5 # Last, reserved block, padding
		X:deadcafe # Never read
	`))
	for i := 0; i < 3; i++ {
		chunk, err := d.Next()
		if !errors.IsInvalidSymbol(err) {
			t.Errorf("call %d, error mismatch: got %v, want invalid symbol", i, err)
		}
		if len(chunk) > 0 {
			t.Errorf("call %d, unexpected output: %x", i, chunk)
		}
	}
	if d.InputOffset() != 1 {
		t.Errorf("input offset mismatch: got %d, want 1", d.InputOffset())
	}
	if d.OutputOffset() != 0 {
		t.Errorf("output offset mismatch: got %d, want 0", d.OutputOffset())
	}
}

func TestDecoderNeedInput(t *testing.T) {
	data := textData(100000)
	input := mustCompress(data, 6)
	trailer := []byte("trailer")

	d, _ := NewDecoder(nil)
	var output []byte
	next := func() error {
		for {
			chunk, err := d.Next()
			if err != nil {
				return err
			}
			output = append(output, chunk...)
		}
	}

	half := len(input) / 2
	d.Feed(input[:half])
	if err := next(); err != ErrNeedInput {
		t.Fatalf("error mismatch: got %v, want %v", err, ErrNeedInput)
	}
	inOff, outOff := d.InputOffset(), d.OutputOffset()
	if inOff > int64(half) {
		t.Errorf("input offset %d beyond fed input %d", inOff, half)
	}
	if err := next(); err != ErrNeedInput {
		t.Fatalf("error mismatch: got %v, want %v", err, ErrNeedInput)
	}
	if d.InputOffset() != inOff || d.OutputOffset() != outOff {
		t.Errorf("offsets moved without input: got (%d, %d), want (%d, %d)", d.InputOffset(), d.OutputOffset(), inOff, outOff)
	}

	d.Feed(append(append([]byte(nil), input[half:]...), trailer...))
	if err := next(); err != io.EOF {
		t.Fatalf("error mismatch: got %v, want %v", err, io.EOF)
	}
	if !bytes.Equal(output, data) {
		t.Errorf("output mismatch")
	}
	if !d.Done() {
		t.Errorf("decoder not done")
	}
	if !bytes.Equal(d.Remaining(), trailer) {
		t.Errorf("remaining mismatch: got %q, want %q", d.Remaining(), trailer)
	}
	if d.InputOffset() != int64(len(input)) {
		t.Errorf("input offset mismatch: got %d, want %d", d.InputOffset(), len(input))
	}
	if _, err := d.Next(); err != io.EOF {
		t.Errorf("error mismatch after end: got %v, want %v", err, io.EOF)
	}
}

func TestDecoderTruncated(t *testing.T) {
	input := mustCompress(textData(10000), 6)
	for _, n := range []int{0, 1, 2, len(input) / 2, len(input) - 1} {
		chunks, err := decodeAll(input[:n], 0, 0)
		if !errors.IsTruncated(err) {
			t.Errorf("length %d, error mismatch: got %v, want truncated input", n, err)
		}
		if got := bytes.Join(chunks, nil); !bytes.HasPrefix(textData(10000), got) {
			t.Errorf("length %d, output is not a prefix of the original data", n)
		}
	}
}

func TestDecoderReset(t *testing.T) {
	d, _ := NewDecoder(&DecoderConfig{ChunkSize: 5})
	d.Feed([]byte("garbage"))
	if _, err := d.Next(); !errors.IsInvalidSymbol(err) {
		t.Errorf("error mismatch: got %v, want invalid symbol", err)
	}

	d.Reset()
	d.Feed(testutil.StoredBlocks([]byte("hello, world")))
	var chunks []string
	for {
		chunk, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		chunks = append(chunks, string(chunk))
	}
	want := []string{"hello", ", wor", "ld"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks mismatch: got %q, want %q", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d mismatch: got %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestDecoderConfig(t *testing.T) {
	for _, n := range []int{-1, MaxChunkSize + 1} {
		if _, err := NewDecoder(&DecoderConfig{ChunkSize: n}); !errors.IsInvalid(err) {
			t.Errorf("chunk size %d, error mismatch: got %v, want invalid argument", n, err)
		}
	}
	d, err := NewDecoder(&DecoderConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.chunkSize != DefaultChunkSize {
		t.Errorf("chunk size mismatch: got %d, want %d", d.chunkSize, DefaultChunkSize)
	}
}
