// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"github.com/alecthomas/kong"
	strconv "github.com/dsnet/golib/unitconv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/dsnet/gzstream/flate"
)

const (
	EnvVarPrefix = "GZSTREAM"
	Suffix       = ".gz"
)

// VERSION gets set during build
var VERSION = "0.0.0"

type CLI struct {
	File      string `kong:"arg,optional,help='Compressed input file; standard input when absent or -'"`
	Stdout    bool   `kong:"help='Write to standard output and keep the input',short='c'"`
	Output    string `kong:"help='Output file; defaults to the input name without .gz',short='o'"`
	Force     bool   `kong:"help='Overwrite an existing output file',short='f'"`
	Keep      bool   `kong:"help='Keep the input file after success',short='k'"`
	List      bool   `kong:"help='Print the gzip header and exit',short='l'"`
	ChunkSize string `kong:"help='Size of decompressed chunks, with an optional SI or IEC prefix',default='32Ki'"`
	Pipe      bool   `kong:"help='Decompress on a separate goroutine'"`
	Digest    bool   `kong:"help='Log the xxHash64 digest of the decompressed data'"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Quiet   bool             `kong:"help='Only log warnings and errors',short='q'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`

	// Internal bits
	ChunkBytes int `kong:"-"`
}

// useStdin reports whether the input is standard input.
func (c *CLI) useStdin() bool { return c.File == "" || c.File == "-" }

// NewConfig parses the command line arguments, with environment variables
// prefixed by EnvVarPrefix providing the defaults.
func NewConfig(args []string) (*CLI, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("gunzip"),
		kong.Description("Streaming gzip decompressor"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": VERSION,
		})
	if err != nil {
		return nil, errors.Wrap(err, "error building CLI parser")
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, errors.Wrap(err, "error parsing CLI args")
	}

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}
	return cli, nil
}

func validateCLIArgs(cli *CLI) error {
	if cli == nil {
		return errors.New("cli args cannot be nil")
	}

	n, err := strconv.ParsePrefix(cli.ChunkSize, strconv.AutoParse)
	if err != nil {
		return errors.Wrapf(err, "invalid chunk size %q", cli.ChunkSize)
	}
	if n < 1 || n > flate.MaxChunkSize || n != float64(int(n)) {
		return errors.Errorf("chunk size must be a whole number between 1 and %d", flate.MaxChunkSize)
	}
	cli.ChunkBytes = int(n)

	if cli.Debug && cli.Quiet {
		return errors.New("--debug and --quiet are mutually exclusive")
	}
	if cli.Output != "" && cli.Stdout {
		return errors.New("--output and --stdout are mutually exclusive")
	}
	return nil
}
