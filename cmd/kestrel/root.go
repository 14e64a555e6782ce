package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "Kestrel - a minimal HTTP/1.1 reverse proxy",
	Long: `Kestrel is a reverse proxy that round-robins client connections across a
configured set of upstreams, relaying request and response bytes verbatim
under a four-phase connect/read/write/total timeout policy.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
