package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, fn func() error) (stdout string, err error) {
	t.Helper()
	oldOut := os.Stdout
	defer func() { os.Stdout = oldOut }()

	outR, outW, _ := os.Pipe()
	os.Stdout = outW

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() { _, _ = io.Copy(&buf, outR); close(done) }()

	err = fn()
	outW.Close()
	<-done
	return buf.String(), err
}

func TestHelp(t *testing.T) {
	out, err := captureOutput(t, func() error {
		return run([]string{"help", "serve"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "serve FLAGS")
}

func TestMissingCommand(t *testing.T) {
	err := run(nil)
	require.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.Error(t, err)
}

func TestPrintSDL(t *testing.T) {
	out, err := captureOutput(t, func() error {
		return run([]string{"print-sdl"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "type Query")
	require.Contains(t, out, "userSubscribedTo: [User!]!")
}

func TestPrintSDLToFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "schema.graphql")
	err := run([]string{"print-sdl", "-out", outFile})
	require.NoError(t, err)

	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Contains(t, string(raw), "type User")
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	err := run([]string{"seed", "-data.dir", dir, "-data.seed", filepath.Join("testdata", "seed.json")})
	require.NoError(t, err)
}

func TestSeedCommandMissingFlags(t *testing.T) {
	err := run([]string{"seed"})
	require.Error(t, err)
}

func TestServeRejectsUnknownBackend(t *testing.T) {
	err := run([]string{"serve", "-data.backend", "papyrus"})
	require.Error(t, err)
}

func TestServeMemoryRequiresSeed(t *testing.T) {
	err := run([]string{"serve", "-data.backend", "memory"})
	require.Error(t, err)
}
