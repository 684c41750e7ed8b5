// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzip

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"strings"
	"time"

	"github.com/dsnet/golib/errs"

	"github.com/dsnet/gzstream/internal/errors"
)

const (
	magic0        = 0x1f
	magic1        = 0x8b
	methodDeflate = 8

	// maxFieldSize bounds the NAME and COMMENT fields, which are otherwise
	// only terminated by a NUL byte.
	maxFieldSize = 1 << 16
)

// Flags is the set of header flags of RFC 1952, section 2.3.1.
type Flags uint8

const (
	FlagText    Flags = 1 << iota // Data is probably ASCII text
	FlagHCRC                      // Header CRC-16 is present
	FlagExtra                     // Extra field is present
	FlagName                      // Original file name is present
	FlagComment                   // File comment is present

	flagsReserved Flags = 0xe0
)

// NewFlags returns the flags encoded in b.
// It reports an error if any of the reserved bits 5-7 is set.
func NewFlags(b byte) (Flags, error) {
	f := Flags(b)
	if f&flagsReserved != 0 {
		return 0, errorf(errors.MalformedHeader, "reserved flag bits set: %08b", b)
	}
	return f, nil
}

// Has reports whether all flags in x are set.
func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	var ss []string
	for _, v := range []struct {
		f Flags
		s string
	}{
		{FlagText, "text"},
		{FlagHCRC, "hcrc"},
		{FlagExtra, "extra"},
		{FlagName, "name"},
		{FlagComment, "comment"},
	} {
		if f.Has(v.f) {
			ss = append(ss, v.s)
		}
	}
	if len(ss) == 0 {
		return "none"
	}
	return strings.Join(ss, "|")
}

// Header is the gzip member header of RFC 1952, section 2.3.
// The optional fields are nil when absent.
type Header struct {
	Flags     Flags
	ModTime   uint32 // Seconds since the Unix epoch, or zero if unknown
	XFlags    byte   // Extra flags, set by the compressor
	OS        byte   // Operating system on which compression took place
	Extra     []byte
	Name      []byte // Original file name, without the NUL terminator
	Comment   []byte // File comment, without the NUL terminator
	HeaderCRC *uint16

	size int64 // Encoded size of the header
}

// Time returns the modification time, or the zero Time if unknown.
func (h *Header) Time() time.Time {
	if h.ModTime == 0 {
		return time.Time{}
	}
	return time.Unix(int64(h.ModTime), 0)
}

var osNames = map[byte]string{
	0:   "FAT",
	1:   "Amiga",
	2:   "VMS",
	3:   "Unix",
	4:   "VM/CMS",
	5:   "Atari TOS",
	6:   "HPFS",
	7:   "Macintosh",
	8:   "Z-System",
	9:   "CP/M",
	10:  "TOPS-20",
	11:  "NTFS",
	12:  "QDOS",
	13:  "Acorn RISCOS",
	255: "unknown",
}

// OSName returns the name of the operating system recorded in the header.
func (h *Header) OSName() string {
	if s, ok := osNames[h.OS]; ok {
		return s
	}
	return "reserved"
}

// headerReader reads header fields while keeping the CRC-32 of every byte
// read, which the optional header CRC-16 is checked against.
type headerReader struct {
	rd  io.ByteReader
	crc uint32
	cnt int64
}

func (hr *headerReader) readByte() byte {
	b, err := hr.rd.ReadByte()
	if err != nil {
		errs.Panic(readError(err, "header"))
	}
	hr.crc = crc32.Update(hr.crc, crc32.IEEETable, []byte{b})
	hr.cnt++
	return b
}

func (hr *headerReader) readFull(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = hr.readByte()
	}
	return b
}

func (hr *headerReader) readUint16() uint16 {
	return binary.LittleEndian.Uint16(hr.readFull(2))
}

func (hr *headerReader) readString() []byte {
	var b []byte
	for {
		c := hr.readByte()
		if c == 0 {
			return b
		}
		errs.Assert(len(b) < maxFieldSize, errorf(errors.MalformedHeader, "field exceeds %d bytes", maxFieldSize))
		b = append(b, c)
	}
}

// readHeader parses a gzip member header from rd.
func readHeader(rd io.ByteReader) (h *Header, err error) {
	defer errs.Recover(&err)
	hr := &headerReader{rd: rd}
	h = new(Header)

	var fixed [10]byte
	copy(fixed[:], hr.readFull(len(fixed)))
	errs.Assert(fixed[0] == magic0 && fixed[1] == magic1,
		errorf(errors.MalformedHeader, "bad magic %#02x%02x", fixed[0], fixed[1]))
	errs.Assert(fixed[2] == methodDeflate,
		errorf(errors.MalformedHeader, "unsupported compression method %d", fixed[2]))
	h.Flags, err = NewFlags(fixed[3])
	errs.Panic(err)
	h.ModTime = binary.LittleEndian.Uint32(fixed[4:8])
	h.XFlags = fixed[8]
	h.OS = fixed[9]

	if h.Flags.Has(FlagExtra) {
		n := hr.readUint16()
		h.Extra = hr.readFull(int(n))
	}
	if h.Flags.Has(FlagName) {
		h.Name = hr.readString()
	}
	if h.Flags.Has(FlagComment) {
		h.Comment = hr.readString()
	}
	if h.Flags.Has(FlagHCRC) {
		want := uint16(hr.crc)
		got := hr.readUint16()
		errs.Assert(got == want,
			errorf(errors.MalformedHeader, "header CRC-16 mismatch: got %#04x, want %#04x", got, want))
		h.HeaderCRC = &got
	}
	h.size = hr.cnt
	return h, nil
}

// readError classifies a failure of the underlying reader while reading
// the named part of the member.
func readError(err error, part string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errorf(errors.TruncatedInput, "input ended in %s", part)
	}
	return errors.Error{Code: errors.Source, Pkg: "gzip", Err: err}
}
