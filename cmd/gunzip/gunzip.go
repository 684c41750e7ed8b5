// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	strconv "github.com/dsnet/golib/unitconv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dsnet/gzstream"
	"github.com/dsnet/gzstream/gzip"
)

// Gunzip decompresses a single gzip file as directed by the CLI options.
type Gunzip struct {
	cli    *CLI
	log    *logrus.Entry
	stdin  io.Reader
	stdout io.Writer
}

func New(cli *CLI, stdin io.Reader, stdout io.Writer) *Gunzip {
	return &Gunzip{
		cli:    cli,
		log:    logrus.WithField("pkg", "gunzip"),
		stdin:  stdin,
		stdout: stdout,
	}
}

func formatSize(n int64) string {
	return strconv.FormatPrefix(float64(n), strconv.Base1024, 2) + "B"
}

// outputPath returns the path to write to, or "" for standard output.
func (g *Gunzip) outputPath() (string, error) {
	switch {
	case g.cli.Stdout || (g.cli.useStdin() && g.cli.Output == ""):
		return "", nil
	case g.cli.Output != "":
		return g.cli.Output, nil
	case strings.HasSuffix(g.cli.File, Suffix) && len(g.cli.File) > len(Suffix):
		return strings.TrimSuffix(g.cli.File, Suffix), nil
	default:
		return "", errors.Errorf("%s: unknown suffix, use --output or --stdout", g.cli.File)
	}
}

func (g *Gunzip) Run(ctx context.Context) error {
	llog := g.log.WithField("method", "Run")
	llog.Debug("start")
	defer llog.Debug("exit")

	in, name := g.stdin, "<stdin>"
	if !g.cli.useStdin() {
		f, err := os.Open(g.cli.File)
		if err != nil {
			return errors.Wrap(err, "unable to open input")
		}
		defer f.Close()
		in, name = f, g.cli.File
	}

	zr, err := gzip.Open(in, &gzip.ReaderConfig{ChunkSize: g.cli.ChunkBytes})
	if err != nil {
		return errors.Wrapf(err, "unable to read header of %s", name)
	}
	g.logHeader(name, zr.Header())
	if g.cli.List {
		g.printHeader(name, zr.Header())
		return nil
	}

	path, err := g.outputPath()
	if err != nil {
		return err
	}
	out := g.stdout
	if path != "" {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if !g.cli.Force {
			flags |= os.O_EXCL
		}
		f, err := os.OpenFile(path, flags, 0644)
		if err != nil {
			return errors.Wrap(err, "unable to create output")
		}
		defer f.Close()
		out = f
	}

	var src gzstream.ChunkSource = zr
	if g.cli.Pipe {
		p := gzstream.NewPipe(ctx, zr)
		defer p.Close()
		src = p
		llog.Debug("decompressing on a separate goroutine")
	}

	w := out
	digest := xxhash.New()
	if g.cli.Digest {
		w = io.MultiWriter(out, digest)
	}

	start := time.Now()
	n, err := gzstream.NewChunkReader(src).WriteTo(w)
	if err != nil {
		if path != "" {
			os.Remove(path)
		}
		return errors.Wrapf(err, "unable to decompress %s", name)
	}
	if f, ok := out.(*os.File); ok && path != "" {
		if err := f.Close(); err != nil {
			return errors.Wrap(err, "unable to close output")
		}
	}

	g.log.WithFields(logrus.Fields{
		"input":        name,
		"compressed":   formatSize(zr.InputOffset()),
		"decompressed": formatSize(n),
		"elapsed":      time.Since(start).Round(time.Millisecond),
	}).Info("decompressed")
	if g.cli.Digest {
		g.log.Infof("xxhash64: %016x", digest.Sum64())
	}

	if path != "" && !g.cli.Keep && !g.cli.useStdin() {
		if err := os.Remove(g.cli.File); err != nil {
			return errors.Wrap(err, "unable to remove input")
		}
		llog.Debugf("removed %s", g.cli.File)
	}
	return nil
}

func (g *Gunzip) logHeader(name string, h *gzip.Header) {
	g.log.WithFields(logrus.Fields{
		"input": name,
		"flags": h.Flags,
		"name":  string(h.Name),
		"mtime": h.Time(),
		"os":    h.OSName(),
	}).Debug("read header")
}

func (g *Gunzip) printHeader(name string, h *gzip.Header) {
	mtime := "unknown"
	if t := h.Time(); !t.IsZero() {
		mtime = t.UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(g.stdout, "file:     %s\n", name)
	fmt.Fprintf(g.stdout, "name:     %s\n", h.Name)
	fmt.Fprintf(g.stdout, "comment:  %s\n", h.Comment)
	fmt.Fprintf(g.stdout, "modified: %s\n", mtime)
	fmt.Fprintf(g.stdout, "os:       %s\n", h.OSName())
	fmt.Fprintf(g.stdout, "flags:    %v\n", h.Flags)
}
