// Package main provides the BIOPERIANT12 run inspection HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"go.ngs.io/periant/internal/app"
	"go.ngs.io/periant/internal/config"
	httpHandler "go.ngs.io/periant/internal/http"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", getEnv("PERIANT_CONFIG", ""), "Path to TOML configuration file")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("periant-server version %s\n", version)
		return
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"port":       cfg.Server.Port,
		"input_root": cfg.InputRoot,
		"mask":       cfg.MaskPath,
		"time_step":  cfg.TimeStep,
	}).Info("Starting BIOPERIANT12 API server")

	c, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize")
	}

	router := httpHandler.SetupRouter(httpHandler.Services{
		Config:       cfg,
		Locator:      c.Locator,
		Opener:       c.Loader,
		Processor:    c.Processor,
		Coefficients: c.Coefficients,
		Log:          log,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("Server listening on %s", addr)
	log.Infof("Health check: http://localhost:%s/health", cfg.Server.Port)

	if err := router.Run(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("BIOPERIANT12 API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  periant-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -config PATH   TOML configuration file (default: $PERIANT_CONFIG)")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  PERIANT_INPUT_ROOT      Directory holding the BIOPERIANT12-<case>-S run directories")
	fmt.Println("  PERIANT_MASK_PATH       PERIANT12 ocean mask NetCDF file")
	fmt.Println("  PERIANT_COEFFS_PATH     NEMO output coefficient CSV (optional)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL               logrus level (default: info)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/calendar               Time axis and file date tokens")
	fmt.Println("  GET /v1/files                  Present and missing output files")
	fmt.Println("  GET /v1/coefficients/:name     Rescaling coefficients of a variable")
	fmt.Println("  GET /v1/datasets/summary       Run the pipeline and summarize the result")
	fmt.Println("  GET /v1/grid/nearest           Nearest grid index search")
	fmt.Println()
}
