// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "github.com/dsnet/gzstream/internal/errors"

const maxPrefixBits = 15

const (
	maxNumCLenSyms = 19
	maxNumLitSyms  = 286
	maxNumDistSyms = 30
)

var (
	lenLUT   [maxNumLitSyms - 257]rangeCode // RFC section 3.2.5
	distLUT  [maxNumDistSyms]rangeCode      // RFC section 3.2.5
	litTree  prefixDecoder                  // RFC section 3.2.6
	distTree prefixDecoder                  // RFC section 3.2.6
)

type rangeCode struct {
	base uint32 // Starting base offset of the range
	bits uint32 // Bit-width of a subsequent integer to add to base offset
}

var (
	// RFC section 3.2.7.
	// Prefix code lengths for code lengths alphabet.
	clenLens = [maxNumCLenSyms]uint{
		16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
	}
)

func init() {
	// These come from the RFC section 3.2.5.
	for i, base := 0, 3; i < len(lenLUT)-1; i++ {
		nb := uint(i/4 - 1)
		if i < 4 {
			nb = 0
		}
		lenLUT[i] = rangeCode{base: uint32(base), bits: uint32(nb)}
		base += 1 << nb
	}
	lenLUT[len(lenLUT)-1] = rangeCode{base: 258, bits: 0}

	// These come from the RFC section 3.2.5.
	for i, base := 0, 1; i < len(distLUT); i++ {
		nb := uint(i/2 - 1)
		if i < 2 {
			nb = 0
		}
		distLUT[i] = rangeCode{base: uint32(base), bits: uint32(nb)}
		base += 1 << nb
	}

	// These come from the RFC section 3.2.6.
	// Symbols 286 and 287 take part in the code, but never appear in a
	// valid stream.
	var litCodes [288]prefixCode
	for i := 0; i < 144; i++ {
		litCodes[i] = prefixCode{sym: uint32(i), len: 8}
	}
	for i := 144; i < 256; i++ {
		litCodes[i] = prefixCode{sym: uint32(i), len: 9}
	}
	for i := 256; i < 280; i++ {
		litCodes[i] = prefixCode{sym: uint32(i), len: 7}
	}
	for i := 280; i < 288; i++ {
		litCodes[i] = prefixCode{sym: uint32(i), len: 8}
	}
	litTree.Init(litCodes[:])

	// These come from the RFC section 3.2.6.
	// Likewise, distance symbols 30 and 31 are never valid.
	var distCodes [32]prefixCode
	for i := 0; i < 32; i++ {
		distCodes[i] = prefixCode{sym: uint32(i), len: 5}
	}
	distTree.Init(distCodes[:])
}

// readPrefixCodes reads the literal and distance prefix codes according to
// RFC section 3.2.7 and installs them as the current dynamic trees.
//
// Every bit of the header is read before either tree is modified, so running
// out of input part way through leaves the decoder untouched.
func (d *Decoder) readPrefixCodes() {
	br := &d.rd
	numLitSyms := br.ReadBits(5) + 257
	numDistSyms := br.ReadBits(5) + 1
	numCLenSyms := br.ReadBits(4) + 4
	if numLitSyms > maxNumLitSyms {
		errors.Panic(errorf(errors.MalformedDynamicHeader, "HLIT of %d exceeds %d", numLitSyms, maxNumLitSyms))
	}
	if numDistSyms > maxNumDistSyms {
		errors.Panic(errorf(errors.MalformedDynamicHeader, "HDIST of %d exceeds %d", numDistSyms, maxNumDistSyms))
	}

	// Read the code-lengths prefix table.
	var codeCLensArr [maxNumCLenSyms]prefixCode // Sorted, but may have holes
	for _, sym := range clenLens[:numCLenSyms] {
		clen := br.ReadBits(3)
		if clen > 0 {
			codeCLensArr[sym] = prefixCode{sym: uint32(sym), len: uint32(clen)}
		}
	}
	codeCLens := codeCLensArr[:0] // Compact the array to have no holes
	for _, c := range codeCLensArr {
		if c.len > 0 {
			codeCLens = append(codeCLens, c)
		}
	}
	codeCLens = handleDegenerateCodes(codeCLens, maxNumCLenSyms)
	d.clenTree.Init(codeCLens)

	// Use code-lengths table to decode HLIT and HDIST prefix tables.
	var codesArr [maxNumLitSyms + maxNumDistSyms]prefixCode
	var clenLast uint
	codeLits := codesArr[:0]
	codeDists := codesArr[maxNumLitSyms:maxNumLitSyms]
	appendCode := func(sym, clen uint) {
		if sym < numLitSyms {
			pc := prefixCode{sym: uint32(sym), len: uint32(clen)}
			codeLits = append(codeLits, pc)
		} else {
			pc := prefixCode{sym: uint32(sym - numLitSyms), len: uint32(clen)}
			codeDists = append(codeDists, pc)
		}
	}
	for sym, maxSyms := uint(0), numLitSyms+numDistSyms; sym < maxSyms; {
		clen := br.ReadSymbol(&d.clenTree)
		if clen < 16 {
			// Literal bit-length symbol used.
			if clen > 0 {
				appendCode(sym, clen)
			}
			clenLast = clen
			sym++
			continue
		}

		// Repeater symbol used.
		var repCnt uint
		switch repSym := clen; repSym {
		case 16:
			if sym == 0 {
				errors.Panic(errorf(errors.MalformedDynamicHeader, "repeat of previous length with no previous length"))
			}
			clen = clenLast
			repCnt = 3 + br.ReadBits(2)
		case 17:
			clen = 0
			repCnt = 3 + br.ReadBits(3)
		case 18:
			clen = 0
			repCnt = 11 + br.ReadBits(7)
		default:
			errors.Panic(errorf(errors.InvalidHuffmanTable, "no code-length symbol matches the input"))
		}
		if sym+repCnt > maxSyms {
			errors.Panic(errorf(errors.MalformedDynamicHeader, "code lengths overrun %d symbols by %d", maxSyms, sym+repCnt-maxSyms))
		}
		if clen > 0 {
			for symEnd := sym + repCnt; sym < symEnd; sym++ {
				appendCode(sym, clen)
			}
		} else {
			sym += repCnt
		}
		clenLast = clen
	}

	codeLits = handleDegenerateCodes(codeLits, maxNumLitSyms)
	d.dynLitTree.Init(codeLits)
	codeDists = handleDegenerateCodes(codeDists, maxNumDistSyms)
	d.dynDistTree.Init(codeDists)

	// As an optimization, we can initialize minBits to read at a time for the
	// HLIT tree to the length of the EOB marker since we know that every block
	// must terminate with one. This preserves the property that we never read
	// any extra bytes after the end of the DEFLATE stream.
	for i := len(codeLits) - 1; i >= 0; i-- {
		if codeLits[i].sym == endBlockSym && codeLits[i].len > 0 {
			d.dynLitTree.minBits = codeLits[i].len
			break
		}
	}
}

// RFC section 3.2.7 allows degenerate prefix trees with only node, but requires
// a single bit for that node. This causes an unbalanced tree where the "1" code
// is unused. The canonical prefix code generation algorithm breaks with this.
//
// To handle this case, we artificially insert another node for the "1" code
// that uses a symbol larger than the alphabet to force an error later if
// the code ends up getting used.
func handleDegenerateCodes(codes []prefixCode, maxSyms uint) []prefixCode {
	if len(codes) != 1 || codes[0].len != 1 {
		return codes
	}
	return append(codes, prefixCode{sym: uint32(maxSyms), len: 1})
}
