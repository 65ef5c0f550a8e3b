// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import (
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const (
	rescanAttempts   = 3
	rescanRetryDelay = time.Second
)

// DeviceRescanner forces the kernel to re-read the partition table of a
// device so that a freshly written image is visible before we look for its
// EFI system partition.
type DeviceRescanner interface {
	Rescan(device string) error
}

// hostRescanner rescans with partprobe, falling back to the BLKRRPART ioctl
// when partprobe is unavailable. Rescanning is best effort: failures are
// logged, never fatal.
type hostRescanner struct{}

func (hostRescanner) Rescan(device string) error {
	if _, err := appRunner.RunAttempts(rescanAttempts, rescanRetryDelay, "partprobe", device); err != nil {
		log.Printf("partprobe of %s failed: %v; falling back to BLKRRPART", device, err)
		if err := rereadPartitionTable(device); err != nil {
			log.Printf("Cannot re-read partition table of %s: %v", device, err)
		}
	}

	if _, err := appRunner.Run("udevadm", "settle"); err != nil {
		log.Printf("udevadm settle failed: %v", err)
	}
	return nil
}

// rereadPartitionTable invokes the BLKRRPART ioctl to have the kernel re-read
// the partition table.
func rereadPartitionTable(device string) error {
	f, err := os.Open(device)
	if err != nil {
		return err
	}
	defer f.Close()

	unix.Sync()
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKRRPART, 0); errno != 0 {
		return fmt.Errorf("BLKRRPART ioctl on %s: %v", device, errno)
	}
	return nil
}

// appRescanner is our default device rescanner.
var appRescanner DeviceRescanner = hostRescanner{}
