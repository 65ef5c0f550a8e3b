// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner abstracts away external command execution.
//
// Run executes the command once and returns its stdout. RunAttempts executes
// it up to attempts times, sleeping delay between tries, and returns the
// stdout of the first successful run.
type CommandRunner interface {
	Run(name string, args ...string) (string, error)
	RunAttempts(attempts int, delay time.Duration, name string, args ...string) (string, error)
}

// CommandError is the failure of a single external command.
type CommandError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %s %s failed: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// execRunner implements CommandRunner using os/exec.
type execRunner struct{}

func (execRunner) Run(name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{Name: name, Args: args, Stderr: stderr.String(), Err: err}
	}

	return stdout.String(), nil
}

func (r execRunner) RunAttempts(attempts int, delay time.Duration, name string, args ...string) (string, error) {
	return retryRun(attempts, delay, func() (string, error) {
		return r.Run(name, args...)
	})
}

// retryRun calls fn up to attempts times with delay between tries, returning
// the first success or the last error.
func retryRun(attempts int, delay time.Duration, fn func() (string, error)) (string, error) {
	var out string
	var err error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(delay)
		}
		if out, err = fn(); err == nil {
			return out, nil
		}
	}

	return "", err
}

// appRunner is our default command runner.
var appRunner CommandRunner = execRunner{}
