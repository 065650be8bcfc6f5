package main

import (
	"fmt"
	"os"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/pkg/log"
	"github.com/Jayjokeer/loyalty-api/pkg/server"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	cliApp := &cli.App{
		Name:  "api-server",
		Usage: "loyalty points api",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "yaml config file, environment variables override it",
						Value:   fmt.Sprintf("configs/config.%s.yaml", env),
						EnvVars: []string{"CONFIG_FILE"},
					},
				},
				Action: func(ctx *cli.Context) error {
					cfg, err := config.Load(ctx.String("config"))
					if err != nil {
						return err
					}
					appProvider, cleanup, err := InitServer(cfg)
					if err != nil {
						return err
					}
					defer cleanup()
					return server.Run(ctx, appProvider)
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("failed to start server", zap.Error(err))
	}
}
