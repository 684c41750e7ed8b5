// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testData = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. "

func mustGzip(t *testing.T, data []byte, name string) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Name = name
	zw.ModTime = time.Unix(1500000000, 0)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeInput(t *testing.T, data []byte) string {
	path := filepath.Join(t.TempDir(), "data.txt.gz")
	require.NoError(t, os.WriteFile(path, mustGzip(t, data, "data.txt"), 0644))
	return path
}

func parse(t *testing.T, args ...string) *CLI {
	cli, err := NewConfig(args)
	require.NoError(t, err)
	return cli
}

func TestNewConfig(t *testing.T) {
	cli := parse(t, "-k", "--chunk-size", "64Ki", "in.gz")
	assert.Equal(t, "in.gz", cli.File)
	assert.True(t, cli.Keep)
	assert.Equal(t, 64<<10, cli.ChunkBytes)

	cli = parse(t)
	assert.Equal(t, 32<<10, cli.ChunkBytes)
	assert.True(t, cli.useStdin())

	for _, args := range [][]string{
		{"--chunk-size", "0"},
		{"--chunk-size", "2Mi"},
		{"--chunk-size", "bogus"},
		{"--debug", "--quiet"},
		{"-c", "-o", "out"},
	} {
		_, err := NewConfig(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestGunzipFile(t *testing.T) {
	data := []byte(strings.Repeat(testData, 5000))
	path := writeInput(t, data)

	cli := parse(t, "--digest", path)
	require.NoError(t, New(cli, nil, nil).Run(context.Background()))

	got, err := os.ReadFile(strings.TrimSuffix(path, Suffix))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "input should be removed")
}

func TestGunzipKeep(t *testing.T) {
	data := []byte(testData)
	path := writeInput(t, data)
	out := filepath.Join(filepath.Dir(path), "custom.out")

	cli := parse(t, "-k", "--pipe", "-o", out, path)
	require.NoError(t, New(cli, nil, nil).Run(context.Background()))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	_, err = os.Stat(path)
	assert.NoError(t, err, "input should be kept")

	// Without --force an existing output is not overwritten.
	cli = parse(t, "-k", "-o", out, path)
	assert.Error(t, New(cli, nil, nil).Run(context.Background()))
	cli = parse(t, "-k", "-f", "-o", out, path)
	assert.NoError(t, New(cli, nil, nil).Run(context.Background()))
}

func TestGunzipStdio(t *testing.T) {
	data := []byte(strings.Repeat(testData, 100))
	var stdout bytes.Buffer
	cli := parse(t, "--chunk-size", "1k")
	err := New(cli, bytes.NewReader(mustGzip(t, data, "")), &stdout).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, stdout.Bytes())
}

func TestGunzipList(t *testing.T) {
	var stdout bytes.Buffer
	cli := parse(t, "-l")
	err := New(cli, bytes.NewReader(mustGzip(t, []byte(testData), "notes.txt")), &stdout).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "name:     notes.txt")
	assert.Contains(t, stdout.String(), "modified: 2017-07-14T02:40:00Z")
	assert.Contains(t, stdout.String(), "flags:    name")
}

func TestGunzipCorrupted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.gz")
	input := mustGzip(t, []byte(testData), "")
	input[len(input)-6] ^= 0x01 // Corrupt the CRC-32
	require.NoError(t, os.WriteFile(path, input, 0644))

	cli := parse(t, path)
	err := New(cli, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integrity error")

	// The partial output is removed and the input is kept.
	_, err = os.Stat(filepath.Join(dir, "bad"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestGunzipUnknownSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, mustGzip(t, []byte(testData), ""), 0644))
	cli := parse(t, path)
	assert.Error(t, New(cli, nil, nil).Run(context.Background()))
}
