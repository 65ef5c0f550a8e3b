// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import "fmt"

// DeviceNotFoundError reports that no EFI system partition could be resolved
// on a device, neither by content inspection nor by partition UUID lookup.
type DeviceNotFoundError struct {
	Device string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("no EFI partition could be detected on device %s and "+
		"EFI partition UUID has not been recorded during deployment "+
		"(which is often the case for whole disk images). "+
		"Are you using a UEFI-compatible image?", e.Device)
}

// CommandExecutionError wraps the failure of an external command run while
// verifying or updating the UEFI state of a device.
type CommandExecutionError struct {
	Device string
	Err    error
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("could not verify uefi on device %s, failed with %v", e.Device, e.Err)
}

func (e *CommandExecutionError) Unwrap() error { return e.Err }
