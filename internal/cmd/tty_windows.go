//go:build windows

package cmd

import "os"

// checkTTY is a no-op on Windows; the console is always attached.
func checkTTY() error { return nil }

// checkTERM is a no-op on Windows.
func checkTERM() error { return nil }

// openTTY returns nil so the TUI uses the default stdin/stdout console.
func openTTY() (*os.File, error) { return nil, nil }

// acquireLock is not implemented on Windows; sessions run unlocked.
func acquireLock(path string) (int, error) { return -1, nil }

func releaseLock(fd int) {}
