// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version houses the version information for scriptdbg.
package version

import (
	"fmt"
	"strings"
)

const (
	// preReleaseAlphabet lists the characters allowed in the pre-release
	// part of a semantic version.
	preReleaseAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

	// buildAlphabet additionally allows dots in build metadata.
	buildAlphabet = preReleaseAlphabet + "."
)

// Application version, semver 2.0.0.
const (
	Major uint = 0
	Minor uint = 3
	Patch uint = 0
)

var (
	// PreRelease may be overridden at link time with
	// '-ldflags "-X github.com/landaverdend/btcwebtools/internal/version.PreRelease=foo"'.
	PreRelease = "beta"

	// BuildMetadata may be overridden at link time in the same way.
	BuildMetadata = ""
)

// String returns the application version.  Pre-release and build parts are
// stripped of invalid characters and omitted when empty.
func String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", Major, Minor, Patch)
	if pre := filter(PreRelease, preReleaseAlphabet); pre != "" {
		b.WriteString("-" + pre)
	}
	if build := filter(BuildMetadata, buildAlphabet); build != "" {
		b.WriteString("+" + build)
	}
	return b.String()
}

func filter(str, alphabet string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(alphabet, r) {
			return r
		}
		return -1
	}, str)
}
