// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/dsnet/gzstream/internal"
)

// DecodeBitGen decodes a BitGen script into the DEFLATE bit-stream it
// describes. BitGen lets tests spell out a stream field by field, with
// comments recording what each field means.
//
// A script is a list of tokens separated by white space. Anything after a '#'
// on a line is a comment. The first token must be "<<<", which declares that
// bits are packed starting with the least-significant bit of each byte, as
// DEFLATE does.
//
// The remaining tokens are:
//
//	[01]+      A bit-string of at most 64 bits.
//	D<n>:<v>   The decimal value v as an n-bit field.
//	H<n>:<v>   The hexadecimal value v as an n-bit field.
//	X:<hex>    Raw bytes; the stream must be byte-aligned.
//	< or >     Sets the parsing mode for the tokens that follow.
//
// In the "<" mode (the default), the right-most bit of a bit-string and the
// least-significant bit of a value are written first, which is how DEFLATE
// stores header fields. In the ">" mode the left-most or most-significant bit
// is written first, which is how DEFLATE stores prefix codes. A bit-string or
// value token may also start with "<" or ">" to override the mode for that
// token alone. Any token may end with "*<k>" to repeat it k times.
//
// The stream is padded with zero bits up to a byte boundary.
//
// Example:
//	<<<
//	< 0 00 0*5          # Non-last, stored block, padding
//	< H16:0004 H16:fffb # LEN: 4, NLEN
//	X:deadcafe          # Stored data
//	< 1 01              # Last, fixed block
//	> 00110000          # Literal 0x00
//	> 0000000           # EOB marker
//
// produces the bytes 000400fbffdeadcafe630000.
func DecodeBitGen(str string) ([]byte, error) {
	var toks []string
	for _, line := range strings.Split(str, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		toks = append(toks, strings.Fields(line)...)
	}
	if len(toks) == 0 || toks[0] != "<<<" {
		return nil, errors.New("testutil: script must start with <<<")
	}

	var bw bitBuffer
	var msbFirst bool // Current parsing mode
	for _, t := range toks[1:] {
		msb := msbFirst
		if t[0] == '<' || t[0] == '>' {
			msb = t[0] == '>'
			if t = t[1:]; t == "" {
				msbFirst = msb
				continue
			}
		}

		rep := 1
		if i := strings.LastIndexByte(t, '*'); i >= 0 {
			n, err := strconv.Atoi(t[i+1:])
			if err != nil || n < 0 {
				return nil, errors.Errorf("testutil: invalid repeat count in %q", t)
			}
			t, rep = t[:i], n
		}

		if strings.HasPrefix(t, "X:") {
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.Wrapf(err, "testutil: invalid raw bytes %q", t)
			}
			if err := bw.WriteBytes(bytes.Repeat(b, rep)); err != nil {
				return nil, err
			}
			continue
		}

		v, n, err := parseField(t)
		if err != nil {
			return nil, err
		}
		if msb {
			v = internal.ReverseUint64N(v, n)
		}
		for i := 0; i < rep; i++ {
			bw.WriteBits(v, n)
		}
	}
	return bw.b, nil
}

// parseField parses a bit-string or numeric token into its value, with the
// right-most bit being the least significant, and its width in bits.
func parseField(t string) (v uint64, n uint, err error) {
	if strings.Trim(t, "01") == "" && len(t) > 0 {
		if len(t) > 64 {
			return 0, 0, errors.Errorf("testutil: bit-string %q exceeds 64 bits", t)
		}
		v, _ = strconv.ParseUint(t, 2, 64)
		return v, uint(len(t)), nil
	}

	i := strings.IndexByte(t, ':')
	if i < 2 || (t[0] != 'D' && t[0] != 'H') {
		return 0, 0, errors.Errorf("testutil: invalid token %q", t)
	}
	base := 10
	if t[0] == 'H' {
		base = 16
	}
	width, err1 := strconv.ParseUint(t[1:i], 10, 8)
	v, err2 := strconv.ParseUint(t[i+1:], base, 64)
	if err1 != nil || err2 != nil || width > 64 {
		return 0, 0, errors.Errorf("testutil: invalid numeric token %q", t)
	}
	if width < 64 && v>>width != 0 {
		return 0, 0, errors.Errorf("testutil: value overflows %d bits in %q", width, t)
	}
	return v, uint(width), nil
}

// bitBuffer packs bits into bytes starting with the least-significant bit.
type bitBuffer struct {
	b []byte
	m byte // Mask of the next bit to set in the last byte; zero if aligned
}

func (bb *bitBuffer) WriteBytes(p []byte) error {
	if bb.m != 0 {
		return errors.New("testutil: unaligned raw bytes")
	}
	bb.b = append(bb.b, p...)
	return nil
}

func (bb *bitBuffer) WriteBits(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		if bb.m == 0 {
			bb.m = 0x01
			bb.b = append(bb.b, 0x00)
		}
		if v&(1<<i) != 0 {
			bb.b[len(bb.b)-1] |= bb.m
		}
		bb.m <<= 1
	}
}
