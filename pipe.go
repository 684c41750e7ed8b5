// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package gzstream

import (
	"context"
	"sync"
)

type pipeItem struct {
	chunk []byte
	err   error
}

// Pipe runs a ChunkSource on a separate goroutine and hands its chunks to
// the consumer over an unbuffered channel, so the producer is never more
// than one chunk ahead.
//
// An error from the source, including io.EOF, is the last item handed over.
// Closing the pipe or cancelling its context stops the producer once its
// current call to NextChunk returns. A stopped pipe cannot be resumed.
type Pipe struct {
	ctx    context.Context
	items  chan pipeItem
	done   chan struct{} // Closed by Close
	exited chan struct{} // Closed when the producer returns
	once   sync.Once
	err    error // Persistent error seen by the consumer
}

// NewPipe starts a producer goroutine that pulls chunks from src.
// The source must not be used by anything else afterwards.
func NewPipe(ctx context.Context, src ChunkSource) *Pipe {
	p := &Pipe{
		ctx:    ctx,
		items:  make(chan pipeItem),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go p.produce(src)
	return p
}

func (p *Pipe) produce(src ChunkSource) {
	defer close(p.exited)
	defer close(p.items)
	for {
		chunk, err := src.NextChunk()
		select {
		case p.items <- pipeItem{chunk, err}:
		case <-p.done:
			return
		case <-p.ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// stopErr reports why the pipe was stopped, if it was.
func (p *Pipe) stopErr() error {
	select {
	case <-p.done:
		return context.Canceled
	default:
		return p.ctx.Err()
	}
}

// NextChunk returns the next chunk produced by the source. After Close it
// returns context.Canceled, and after the context is done it returns the
// context's error.
func (p *Pipe) NextChunk() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.err = p.stopErr(); p.err != nil {
		return nil, p.err
	}

	select {
	case it, ok := <-p.items:
		if !ok {
			p.err = p.stopErr()
			return nil, p.err
		}
		p.err = it.err
		return it.chunk, it.err
	case <-p.done:
		p.err = context.Canceled
	case <-p.ctx.Done():
		p.err = p.ctx.Err()
	}
	return nil, p.err
}

// Close stops the producer. It does not wait for the producer to return.
func (p *Pipe) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
