package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prasrvenkat/tempo"
	"github.com/prasrvenkat/tempo/cmd/tempo/commands"
	"github.com/prasrvenkat/tempo/internal/config"
	"github.com/prasrvenkat/tempo/internal/logger"
)

func main() {
	// replaced once the command has loaded its config; covers failures
	// before that point
	logger.Init(logger.Options{
		Level:  os.Getenv(config.EnvPrefix + "_LOG_LEVEL"),
		Format: os.Getenv(config.EnvPrefix + "_LOG_FORMAT"),
	})

	if err := commands.NewRootCmd().Execute(); err != nil {
		logger.Named("main").Debug().Stack().Err(err).Msg("command failed")

		var terr *tempo.Error
		if errors.As(err, &terr) {
			fmt.Fprintln(os.Stderr, terr.DisplayRich())
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
