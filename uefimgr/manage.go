// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

// Package uefimgr detects and mounts the EFI system partition of a freshly
// provisioned disk and synchronizes the firmware NVRAM boot entries with the
// bootloaders found on it.
package uefimgr

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const (
	umountAttempts   = 3
	umountRetryDelay = time.Second
)

// ManageUEFI looks for valid EFI bootloaders on device and updates the
// firmware NVRAM for them with efibootmgr.
//
// espPartUUID optionally names the partition UUID of the EFI system
// partition, used as a fallback when content inspection of the device does
// not locate one.
//
// It returns true if a bootloader was found and the NVRAM updated, false if
// the EFI system partition is empty. It fails with *DeviceNotFoundError when
// no EFI system partition can be resolved and with *CommandExecutionError
// when an external command fails.
//
// The mount and the temporary mount point directory never outlive the call:
// cleanup runs on every exit path. Callers must serialize invocations per
// device; nothing here guards against concurrent NVRAM edits.
func ManageUEFI(device, espPartUUID string) (updated bool, err error) {
	log.Printf("Attempting UEFI loader autodetection and NVRAM record setup.")

	if rerr := appRescanner.Rescan(device); rerr != nil {
		return false, wrapCommandErr(device, rerr)
	}

	localPath, err := afero.TempDir(appFs, "", "uefiboot")
	if err != nil {
		return false, fmt.Errorf("cannot allocate temporary directory: %w", err)
	}
	mountPoint := filepath.Join(localPath, "boot", "efi")
	mounted := false

	defer func() {
		err = cleanup(device, localPath, mountPoint, mounted, err)
		if err != nil {
			updated = false
		}
	}()

	partition, lerr := appESPLocator.FindESP(device)
	if lerr != nil {
		// Content inspection is advisory; the UUID fallback may still work.
		log.Printf("Cannot inspect %s for an EFI partition: %v", device, lerr)
	}

	if partition == 0 && espPartUUID != "" {
		partPath, perr := appPartitionLookup.ByUUID(device, espPartUUID)
		if perr != nil {
			return false, wrapCommandErr(device, perr)
		}
		partition, err = partitionNumberFromPath(device, partPath)
		if err != nil {
			return false, err
		}
	}

	if partition == 0 {
		return false, &DeviceNotFoundError{Device: device}
	}

	if err := appFs.MkdirAll(mountPoint, 0755); err != nil {
		return false, fmt.Errorf("cannot create mount point %s: %w", mountPoint, err)
	}

	partDevice := partitionDevicePath(device, partition)
	if _, merr := appRunner.Run("mount", partDevice, mountPoint); merr != nil {
		return false, wrapCommandErr(device, merr)
	}
	mounted = true

	bootloaders, serr := ScanBootloaders(mountPoint)
	if serr != nil {
		return false, serr
	}
	if len(bootloaders) == 0 {
		log.Printf("Empty EFI partition detected.")
		return false, nil
	}

	if serr := syncNVRAM(bootloaders, device, partition, mountPoint); serr != nil {
		return false, wrapCommandErr(device, serr)
	}
	return true, nil
}

// wrapCommandErr turns an external command failure into a
// *CommandExecutionError naming the device; other errors pass through.
func wrapCommandErr(device string, err error) error {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		log.Printf("Could not verify uefi on device %s, failed with %v.", device, err)
		return &CommandExecutionError{Device: device, Err: err}
	}
	return err
}

// cleanup unmounts the EFI system partition if it was mounted, flushes
// filesystem buffers and removes the temporary directory tree.
//
// A failed unmount becomes a *CommandExecutionError that supersedes a prior
// success, but never masks a failure already in flight; in that case the
// unmount failure is only logged and the temporary directory is left in
// place. A failing sync is logged and tolerated.
func cleanup(device, localPath, mountPoint string, mounted bool, prior error) error {
	log.Printf("Executing UEFI clean-up.")

	if mounted {
		if _, uerr := appRunner.RunAttempts(umountAttempts, umountRetryDelay, "umount", mountPoint); uerr != nil {
			uerr = fmt.Errorf("umounting efi system partition failed, attempted %d times: %w", umountAttempts, uerr)
			if prior != nil {
				log.Printf("%v", uerr)
				return prior
			}
			return &CommandExecutionError{Device: device, Err: uerr}
		}
	}

	if _, serr := appRunner.Run("sync"); serr != nil {
		log.Printf("Unable to flush buffers for %s. Error: %v", localPath, serr)
	}
	if rerr := appFs.RemoveAll(localPath); rerr != nil {
		log.Printf("Unable to remove %s. Error: %v", localPath, rerr)
	}

	return prior
}
