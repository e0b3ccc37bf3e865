// Copyright (c) 2020 Shivaram Lingamneni
// Released under the MIT license

package irc

import "fmt"

const (
	// SemVer is the semantic version of ircrelay.
	SemVer = "1.0.0"
)

var (
	// Ver is the full version of ircrelay, used in logs and --version.
	Ver = fmt.Sprintf("ircrelay-%s", SemVer)
	// Commit is the full git hash, if available
	Commit string
)

// initialize version strings (these are set in package main via linker flags)
func SetVersionString(version, commit string) {
	Commit = commit
	if version != "" {
		Ver = fmt.Sprintf("ircrelay-%s", version)
	} else if len(Commit) == 40 {
		Ver = fmt.Sprintf("ircrelay-%s-%s", SemVer, Commit[:16])
	}
}
