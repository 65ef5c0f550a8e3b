// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// errExit stands in for a process exit status in fakes.
type errExit int

func (e errExit) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// fakeRunner records every command and serves canned responses. Outputs are
// keyed by the full command line, failures by the command name.
type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	fail    map[string]error
	onMount func(args []string)
}

func (r *fakeRunner) Run(name string, args ...string) (string, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if name == "mount" && r.onMount != nil {
		r.onMount(args)
	}
	if err := r.fail[name]; err != nil {
		return "", err
	}
	return r.outputs[strings.Join(append([]string{name}, args...), " ")], nil
}

func (r *fakeRunner) RunAttempts(attempts int, _ time.Duration, name string, args ...string) (string, error) {
	var out string
	var err error
	for i := 0; i < attempts; i++ {
		if out, err = r.Run(name, args...); err == nil {
			return out, nil
		}
	}
	return "", err
}

// commandLines returns every recorded call as a single string.
func (r *fakeRunner) commandLines() []string {
	var lines []string
	for _, call := range r.calls {
		lines = append(lines, strings.Join(call, " "))
	}
	return lines
}

func (r *fakeRunner) ran(line string) bool {
	for _, got := range r.commandLines() {
		if got == line {
			return true
		}
	}
	return false
}

func (r *fakeRunner) countRuns(name string) int {
	n := 0
	for _, call := range r.calls {
		if call[0] == name {
			n++
		}
	}
	return n
}

type fakeLocator struct {
	partition int
	err       error
}

func (l fakeLocator) FindESP(string) (int, error) { return l.partition, l.err }

type fakeLookup struct {
	path string
	err  error
}

func (l fakeLookup) ByUUID(string, string) (string, error) { return l.path, l.err }

type fakeRescanner struct{}

func (fakeRescanner) Rescan(string) error { return nil }

// stubSeams swaps all package seams for fakes and restores them when the
// test finishes.
func stubSeams(t *testing.T, fs afero.Fs, runner CommandRunner, locator ESPLocator, lookup PartitionLookup, rescanner DeviceRescanner) {
	t.Helper()
	oldFs, oldRunner := appFs, appRunner
	oldLocator, oldLookup, oldRescanner := appESPLocator, appPartitionLookup, appRescanner

	appFs, appRunner = fs, runner
	appESPLocator, appPartitionLookup, appRescanner = locator, lookup, rescanner

	t.Cleanup(func() {
		appFs, appRunner = oldFs, oldRunner
		appESPLocator, appPartitionLookup, appRescanner = oldLocator, oldLookup, oldRescanner
	})
}

// writeLoader creates a loader file with the executable bit set.
func writeLoader(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte("loader"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := fs.Chmod(path, 0755); err != nil {
		t.Fatal(err)
	}
}

// writeHint creates a UTF-16LE hint file with a BOM.
func writeHint(t *testing.T, fs afero.Fs, path, record string) {
	t.Helper()
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewEncoder()
	raw, _, err := transform.Bytes(encoder, []byte(record))
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, path, raw, 0644); err != nil {
		t.Fatal(err)
	}
}
