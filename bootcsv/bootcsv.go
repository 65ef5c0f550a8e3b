// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

// Package bootcsv reads and writes BOOT*.CSV hint files as used by the shim
// fallback loader. A hint file is a UTF-16 encoded, comma-separated record
// naming the real loader binary and the boot entry label to use for it.
package bootcsv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Entry is one record of a BOOT*.CSV file.
type Entry struct {
	Filename    string // loader binary, relative to the directory holding the CSV
	Label       string // boot entry label
	Options     string // optional loader arguments
	Description string // free text; may itself contain commas
}

// ParseError reports a malformed hint file.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid boot CSV: %s", e.Reason)
}

// Decode parses the raw bytes of a hint file.
//
// The input is UTF-16, little-endian unless a byte-order mark says otherwise;
// a BOM is stripped. The record is split on the first three commas only, so
// the description field keeps any commas it contains. At least the filename
// and label fields must be present.
func Decode(raw []byte) (Entry, error) {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return Entry{}, &ParseError{Reason: fmt.Sprintf("cannot decode UTF-16: %v", err)}
	}

	record := strings.TrimRight(string(decoded), "\r\n\x00")
	fields := strings.SplitN(record, ",", 4)
	if len(fields) < 2 {
		return Entry{}, &ParseError{Reason: fmt.Sprintf("expected at least 2 comma-separated fields, got %d", len(fields))}
	}

	entry := Entry{Filename: fields[0], Label: fields[1]}
	if len(fields) > 2 {
		entry.Options = fields[2]
	}
	if len(fields) > 3 {
		entry.Description = fields[3]
	}
	return entry, nil
}

// DecodeReader parses a hint file from r.
func DecodeReader(r io.Reader) (Entry, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return Entry{}, fmt.Errorf("cannot read boot CSV: %w", err)
	}
	return Decode(buf.Bytes())
}

// Write writes out CSV records for the shim fallback loader to the specified
// writer. The output of this function is unencoded, use a transformed UTF-16
// writer.
func Write(w io.Writer, entries []Entry) error {
	for _, entry := range entries {
		if strings.Contains(entry.Filename, ",") ||
			strings.Contains(entry.Label, ",") ||
			strings.Contains(entry.Options, ",") {
			return fmt.Errorf("entry '%s' contains ',' in one of the attributes, this is not supported", entry.Label)
		}

		_, err := fmt.Fprintf(w, "%s,%s,%s,%s\n", entry.Filename, entry.Label, entry.Options, entry.Description)
		if err != nil {
			return fmt.Errorf("could not write entry '%s': %w", entry.Label, err)
		}
	}

	return nil
}

// WriteFile opens the specified path as UTF-16LE and then calls Write.
func WriteFile(path string, entries []Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	writer := transform.NewWriter(file, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder())
	if err := Write(writer, entries); err != nil {
		return err
	}
	return writer.Close()
}
