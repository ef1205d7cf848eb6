package main

import (
	"context"
	"flag"
	"os"

	"github.com/Temutjin2k/fleet-ops-system/config"
	"github.com/Temutjin2k/fleet-ops-system/internal/app"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"

	_ "github.com/Temutjin2k/fleet-ops-system/docs"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger(types.ServiceName, logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		return
	}

	// Printing configuration
	config.PrintConfig(cfg)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the application
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
