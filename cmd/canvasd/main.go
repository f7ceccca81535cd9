// File: cmd/canvasd/main.go
// Package main
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// canvasd serves a canvas image to one browser over a websocket and logs the
// keys typed in it.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "canvasd",
		Short: "Display a local canvas in a remote browser",
		Long: `canvasd streams an image file to a single browser over a minimal
websocket transport, sending only changed pixels once the browser has
drawn the previous frame, and relays keys typed in the browser back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "canvasd %s (%s)\n", version, commit)
		},
	}
}
