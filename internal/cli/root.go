package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the kadena command tree.
func NewRootCmd(version string) *cobra.Command {
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "kadena",
		Short: "A CLI tool for reporting data to Tellor oracles on Kadena",
		Long: `kadena is a command line interface for interacting with Tellor
oracles on the Kadena blockchain: managing keysets, configuration and
reporting spot prices on-chain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("Version: %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Display package version and exit")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newKeysetCmd())
	rootCmd.AddCommand(newReportCmd())
	return rootCmd
}
