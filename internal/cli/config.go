package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tellor-io/telliot-kadena/internal/config"
	"github.com/tellor-io/telliot-kadena/internal/logger"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kelliot configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create initial configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Init()
			if err != nil {
				return err
			}
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			logger.Info("Configuration files written to %s", dir)
			logger.Info("Network: %s, chain id: %d", cfg.Main.Network, cfg.Main.ChainID)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dump, err := cfg.Dump()
			if err != nil {
				return err
			}
			fmt.Print(dump)
			return nil
		},
	}

	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	return configCmd
}
