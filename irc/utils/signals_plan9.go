//go:build plan9

// Copyright (c) 2020 Shivaram Lingamneni
// released under the MIT license

package utils

import (
	"os"
	"syscall"
)

// ServerExitSignals are the signals the relay shuts down on.
var ServerExitSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}
