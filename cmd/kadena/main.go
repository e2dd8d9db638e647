package main

import (
	"github.com/tellor-io/telliot-kadena/internal/cli"
	"github.com/tellor-io/telliot-kadena/internal/logger"
	"github.com/tellor-io/telliot-kadena/internal/utils"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	utils.LoadEnvironment()
	logger.Init()

	if err := cli.NewRootCmd(version).Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
