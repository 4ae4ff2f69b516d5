package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/i474232898/weatherbeats/internal/config"
)

func main() {
	app := &cli.Command{
		Name:    "weatherbeats",
		Usage:   "Music that matches the weather",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				Sources: cli.EnvVars(config.FileEnv),
			},
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			chartCommand(),
			moodCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal("weatherbeats failed", "err", err)
	}
}
