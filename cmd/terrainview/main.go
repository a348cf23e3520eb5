// Package main is the entry point for the interactive terrain viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/app"
	"github.com/Faultbox/terrainstream/internal/config"
	"github.com/Faultbox/terrainstream/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.Config{Level: cfg.Logging.Level, Console: true}
	if cfg.Logging.LogFile != "" {
		logCfg.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	logger.Init(logCfg)
	defer logger.Sync()

	logger.Log.Info("=== Terrain Stream viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)
	for _, w := range cfg.Warnings() {
		logger.Log.Warn("config", zap.String("warning", w))
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Log.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Log.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Log.Info("viewer closed normally")
}
