// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// recognizedLoaders are the bootloader filenames we accept, lower-cased.
// Do not add bootia32.csv to this list. That is 32bit EFI booting and never
// really became popular.
var recognizedLoaders = map[string]bool{
	"bootx64.csv":      true, // used by GRUB2 shim loader (Ubuntu, Red Hat)
	"boot.csv":         true, // used by rEFInd, Centos7 Grub2
	"bootia32.efi":     true,
	"bootx64.efi":      true, // x86_64 default
	"bootia64.efi":     true,
	"bootarm.efi":      true,
	"bootaa64.efi":     true, // arm64 default
	"bootriscv32.efi":  true,
	"bootriscv64.efi":  true,
	"bootriscv128.efi": true,
	"grubaa64.efi":     true,
	"winload.efi":      true,
}

// isHintFile reports whether a path names a CSV hint file. This test is
// deliberately looser than membership in recognizedLoaders; both tests are
// kept as-is rather than unified.
func isHintFile(path string) bool {
	return strings.Contains(strings.ToLower(path), "csv")
}

// errHintFound aborts a walk once an authoritative hint file turns up.
var errHintFound = errors.New("hint file found")

// ScanBootloaders walks the tree below mountPoint and returns the relative
// paths of all recognized, executable EFI loaders.
//
// A recognized CSV hint file is authoritative: the scan stops at the first
// one encountered and returns only its path, discarding every loader found
// so far. If several hint files live in the same directory the walk order of
// the filesystem decides which one wins.
func ScanBootloaders(mountPoint string) ([]string, error) {
	log.Printf("Looking for all efi files on %s", mountPoint)

	var bootloaders []string
	var hint string

	err := afero.Walk(appFs, mountPoint, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			log.Printf("Cannot inspect %s: %v", path, err)
			return nil
		}
		if info.IsDir() || !recognizedLoaders[strings.ToLower(info.Name())] {
			return nil
		}

		rel, err := filepath.Rel(mountPoint, path)
		if err != nil {
			return err
		}

		if isExecutable(info.Mode()) {
			log.Printf("%s is a valid bootloader", rel)
			bootloaders = append(bootloaders, rel)
		}
		if isHintFile(info.Name()) {
			// The CSV files are intended to be authoritative as to the
			// bootloader and the label to be used, so point directly to it.
			log.Printf("%s is a pointer to a bootloader", rel)
			hint = rel
			return errHintFound
		}
		return nil
	})

	if errors.Is(err, errHintFound) {
		return []string{hint}, nil
	}
	if err != nil {
		return nil, err
	}
	return bootloaders, nil
}
