// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command gunzip decompresses a single-member gzip file using the streaming
// decoder in package gzip.
//
// Example usage:
//	$ gunzip -k data.gz
//	$ curl -s https://example.com/data.gz | gunzip --pipe --digest > data
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
)

func main() {
	cli, err := NewConfig(os.Args[1:])
	if err != nil {
		logrus.Errorf("unable to parse config: %s", err)
		os.Exit(1)
	}

	switch {
	case cli.Debug:
		logrus.SetLevel(logrus.DebugLevel)
		logrus.Debug("debug mode enabled")
	case cli.Quiet:
		logrus.SetLevel(logrus.WarnLevel)
	}
	displayConfig(cli)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := New(cli, os.Stdin, os.Stdout).Run(ctx); err != nil {
		logrus.Errorf("gunzip failed: %s", err)
		stop()
		os.Exit(1)
	}
}

func displayConfig(cli *CLI) {
	logrus.Debug("gunzip settings:")
	logrus.Debugf("  version: %s", VERSION)
	logrus.Debugf("  file: %s", cli.File)
	logrus.Debugf("  output: %s", cli.Output)
	logrus.Debugf("  stdout: %v", cli.Stdout)
	logrus.Debugf("  force: %v", cli.Force)
	logrus.Debugf("  keep: %v", cli.Keep)
	logrus.Debugf("  chunk size: %d", cli.ChunkBytes)
	logrus.Debugf("  pipe: %v", cli.Pipe)
	logrus.Debugf("  digest: %v", cli.Digest)
}
