package main

import (
	"errors"
	"log"
	"os"

	corecmd "github.com/m3rciful/fitbot/core/cmd"
	"github.com/m3rciful/fitbot/internal/app"
	"github.com/m3rciful/fitbot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			c, ok := cfg.(*config.Config)
			if !ok {
				return nil, errors.New("unexpected config type")
			}
			return app.Bootstrap(c)
		},
	})
	if err != nil {
		log.Printf("fitbot: %v", err)
		os.Exit(1)
	}
}
