// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/partition/gpt"
)

// ESPLocator finds the EFI system partition of a device by inspecting its
// contents. It returns the 1-based partition number, or 0 if the device
// carries no ESP.
type ESPLocator interface {
	FindESP(device string) (int, error)
}

// gptESPLocator reads the GPT of the device and matches the EFI system
// partition type GUID.
type gptESPLocator struct{}

func (gptESPLocator) FindESP(device string) (int, error) {
	disk, err := diskfs.Open(device, diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return 0, fmt.Errorf("cannot open %s: %w", device, err)
	}
	defer disk.Close()

	table, err := disk.GetPartitionTable()
	if err != nil {
		// No readable partition table means no ESP, not a failure.
		return 0, nil
	}

	for i, part := range table.GetPartitions() {
		if p, ok := part.(*gpt.Partition); ok && p.Type == gpt.EFISystemPartition {
			return i + 1, nil
		}
	}
	return 0, nil
}

// appESPLocator is our default ESP locator.
var appESPLocator ESPLocator = gptESPLocator{}

// PartitionLookup resolves a partition UUID to a partition device path.
type PartitionLookup interface {
	ByUUID(device, uuid string) (string, error)
}

// findfsLookup resolves PARTUUIDs with findfs(8).
type findfsLookup struct{}

func (findfsLookup) ByUUID(device, uuid string) (string, error) {
	out, err := appRunner.Run("findfs", "PARTUUID="+uuid)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// appPartitionLookup is our default partition UUID resolver.
var appPartitionLookup PartitionLookup = findfsLookup{}

// partitionNumberFromPath extracts the partition number from a partition
// device path. Two naming conventions are tried: a bare numeric suffix
// (/dev/sda3) and the p-infixed suffix NVMe-style devices use
// (/dev/nvme0n1p3).
func partitionNumberFromPath(device, partPath string) (int, error) {
	if n, err := strconv.Atoi(strings.TrimPrefix(partPath, device)); err == nil {
		return n, nil
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(partPath, device+"p")); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("cannot extract partition number for device %s from path %s", device, partPath)
}

// partitionDevicePath combines a device path and a partition number. Devices
// whose name ends in a digit get a `p` separator before the number.
func partitionDevicePath(device string, partition int) string {
	if last := rune(device[len(device)-1]); unicode.IsDigit(last) {
		return fmt.Sprintf("%sp%d", device, partition)
	}
	return fmt.Sprintf("%s%d", device, partition)
}
