// Package cli wires the classifyd command tree: config resolution, logger
// setup, and the serve, check, fetch and predict actions.
package cli

import (
	"context"
	"fmt"
	"os"
)

// Options carries flag values shared by the command tree.
type Options struct {
	ConfigPath string
	LogLevel   string
	Addr       string
}

// MainWithArgs runs the command tree with args and returns the exit code.
func MainWithArgs(args []string) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	root := buildRootCmdWith(&Options{})
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/classifyd.
func Main() int { return MainWithArgs(os.Args[1:]) }
