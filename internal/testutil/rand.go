// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand implements a deterministic pseudo-random number generator.
// This differs from the math.Rand in that the exact output will be consistent
// across different versions of Go.
type Rand struct {
	cipher.Block
	blk [aes.BlockSize]byte
}

func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	r, _ := aes.NewCipher(key[:])
	return &Rand{Block: r}
}

func (r *Rand) Int() int {
	r.Encrypt(r.blk[:], r.blk[:])
	return int(binary.LittleEndian.Uint64(r.blk[:]) >> 2)
}

func (r *Rand) Intn(n int) int {
	return r.Int() % n
}

// Bytes returns n bytes of incompressible data.
func (r *Rand) Bytes(n int) []byte {
	b := make([]byte, n)
	bb := b
	for len(bb) > 0 {
		r.Encrypt(r.blk[:], r.blk[:])
		cnt := copy(bb, r.blk[:])
		bb = bb[cnt:]
	}
	return b
}

// Repeats returns n bytes made mostly of copies of earlier data, at every
// distance a DEFLATE window allows. Since the copied data is itself random,
// the data heavily exercises back-references rather than prefix coding.
func (r *Rand) Repeats(n int) []byte {
	// Lengths are in [4, 512) and distances in [1, 32768), where the
	// exponent of each is picked uniformly.
	randLen := func() int {
		k := uint(r.Intn(7))
		return 4<<k + r.Intn(4<<k)
	}
	randDist := func(max int) int {
		for {
			k := uint(r.Intn(15))
			if d := 1<<k + r.Intn(1<<k); d <= max {
				return d
			}
		}
	}

	b := r.Bytes(randLen())
	for len(b) < n {
		switch p := r.Intn(10); {
		case p == 0:
			b = append(b, r.Bytes(randLen())...)
		default:
			d, l := randDist(len(b)), randLen()
			for i := 0; i < l; i++ {
				b = append(b, b[len(b)-d])
			}
		}
	}
	return b[:n]
}
