// This file is part of uefiboot
// Copyright 2026 Baremetalkit Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package uefimgr

import (
	"os"

	"github.com/spf13/afero"
)

// appFs is our default filesystem.
var appFs = afero.NewOsFs()

// isExecutable reports whether any execute bit (owner, group or other) is set.
func isExecutable(mode os.FileMode) bool {
	return mode&0111 != 0
}
