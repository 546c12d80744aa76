package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Haleralex/storehub/internal/config"
	"github.com/Haleralex/storehub/internal/container"
)

func main() {
	var (
		configPath string
		configName string
		envFile    string
	)
	flag.StringVar(&configPath, "config-path", "configs", "Directory with config file")
	flag.StringVar(&configName, "config-name", "config", "Config file name without extension")
	flag.StringVar(&envFile, "env-file", ".env", "Optional .env file")
	flag.Parse()

	// 1. .env (необязателен, env vars окружения имеют приоритет)
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load %s: %v", envFile, err)
	}

	// 2. Configuration
	cfg, err := config.Load(configPath, configName)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// 3. Container
	c := container.New(cfg)
	if err := c.Initialize(context.Background()); err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}

	// 4. Run (блокируется до SIGINT/SIGTERM)
	runErr := c.Run()
	if runErr != nil {
		c.Logger().Error("Server error", slog.String("error", runErr.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout+5*time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		c.Logger().Error("Shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
