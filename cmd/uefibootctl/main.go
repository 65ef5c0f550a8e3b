// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baremetalkit/uefiboot/uefimgr"
)

var (
	device  string
	espUUID string
)

var rootCmd = &cobra.Command{
	Use:           "uefibootctl",
	Short:         "Synchronize firmware NVRAM boot entries with an EFI system partition",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Detect bootloaders on a device and rewrite its NVRAM boot entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		updated, err := uefimgr.ManageUEFI(device, espUUID)
		if err != nil {
			var notFound *uefimgr.DeviceNotFoundError
			if errors.As(err, &notFound) {
				return fmt.Errorf("device not found: %w", err)
			}
			return err
		}
		if updated {
			fmt.Printf("NVRAM updated for bootloaders on %s\n", device)
		} else {
			fmt.Printf("empty EFI system partition on %s, nothing to do\n", device)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&device, "device", "", "block device holding the EFI system partition")
	syncCmd.Flags().StringVar(&espUUID, "esp-uuid", "", "partition UUID of the EFI system partition, used when content detection fails")
	syncCmd.MarkFlagRequired("device")
	rootCmd.AddCommand(syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
