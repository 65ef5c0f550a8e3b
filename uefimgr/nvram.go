// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import (
	"fmt"
	"log"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/baremetalkit/uefiboot/bootcsv"
)

// bootEntryPattern matches one entry line of `efibootmgr -v` output, for
// example "Boot0003* ubuntu HD(1,GPT,...)". Group 1 is the hex boot number,
// group 2 the rest of the line.
var bootEntryPattern = regexp.MustCompile(`^Boot([0-9a-fA-F]+)\*?\s(.*)$`)

// syncNVRAM rewrites the firmware boot entries for the given loader
// candidates, which are paths relative to mountPoint as returned by
// ScanBootloaders.
//
// For each candidate an existing entry whose label text appears anywhere in
// its efibootmgr line is deleted first, then a fresh entry is created, which
// also puts it at the front of the boot order. The entry list is read once
// up front; deletions during the loop are not re-validated against fresh
// firmware state.
func syncNVRAM(candidates []string, device string, partition int, mountPoint string) error {
	log.Printf("Getting information about boot order.")
	existing, err := appRunner.Run("efibootmgr", "-v")
	if err != nil {
		return err
	}

	labelID := 1
	for _, candidate := range candidates {
		var loaderRel, label string

		if isHintFile(candidate) {
			log.Printf("A CSV file has been identified as a bootloader hint. File: %s", candidate)
			raw, err := afero.ReadFile(appFs, path.Join(mountPoint, candidate))
			if err != nil {
				return fmt.Errorf("cannot read bootloader hint %s: %w", candidate, err)
			}
			entry, err := bootcsv.Decode(raw)
			if err != nil {
				return fmt.Errorf("cannot parse bootloader hint %s: %w", candidate, err)
			}
			loaderRel = path.Join(path.Dir(candidate), entry.Filename)
			label = entry.Label
		} else {
			loaderRel = candidate
			label = "ironic" + strconv.Itoa(labelID)
		}

		fwPath := `\` + strings.ReplaceAll(loaderRel, "/", `\`)

		// Walk the entry list and drop every entry matching the label, so a
		// re-run leaves exactly one entry per label.
		for _, line := range strings.Split(existing, "\n") {
			match := bootEntryPattern.FindStringSubmatch(line)
			if match == nil || !strings.Contains(match[2], label) {
				continue
			}
			log.Printf("Found bootnum %s matching label", match[1])
			if _, err := appRunner.Run("efibootmgr", "-b", match[1], "-B"); err != nil {
				return err
			}
		}

		log.Printf("Adding loader %s on partition %d of device %s", fwPath, partition, device)
		_, err := appRunner.Run("efibootmgr", "-v", "-c", "-d", device,
			"-p", strconv.Itoa(partition), "-w", "-L", label, "-l", fwPath)
		if err != nil {
			return err
		}

		// Advance in case the loop runs again.
		labelID++
	}

	return nil
}
