package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/iwvelando/blind-quote/internal/app"
	"github.com/iwvelando/blind-quote/internal/config"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/internal/quotefile"
	"github.com/iwvelando/blind-quote/internal/server"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/output"
	"github.com/iwvelando/blind-quote/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	quoteLocation := flag.String("quote", "", "path to a saved quote file to price")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	withCosts := flag.Bool("costs", false, "include supplier cost and profit figures in the output")
	xlsxLocation := flag.String("xlsx", "", "also write the current product as an XLSX workbook to this path")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "start the HTTP editor instead of printing the quote")
	address := flag.String("address", "", "listen address override for -serve")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	var seed *quote.QuoteData
	if *quoteLocation != "" {
		data, err := quotefile.LoadFile(*quoteLocation)
		if err != nil {
			logger.Fatal("failed to load quote",
				zap.String("op", "main"),
				zap.String("path", *quoteLocation),
				zap.Error(err),
			)
		}
		seed = &data
	}

	if *serve {
		runServer(conf, seed, *address, logger)
		return
	}

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	a, err := app.New(conf, logger, app.Options{Seed: seed})
	if err != nil {
		logger.Fatal("failed to start quoting session",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = a.Close()
	}()

	results, err := a.Results()
	if err != nil {
		logger.Fatal("failed to calculate quote",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if err := output.Write(os.Stdout, outputFormat, results, *withCosts); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *xlsxLocation != "" {
		data, err := a.Workflow.ExportXLSX(*withCosts)
		if err != nil {
			logger.Fatal("failed to build workbook",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if err := os.WriteFile(*xlsxLocation, data, 0644); err != nil {
			logger.Fatal("failed to write workbook",
				zap.String("op", "main"),
				zap.String("path", *xlsxLocation),
				zap.Error(err),
			)
		}
	}
}

func runServer(conf *config.Configuration, seed *quote.QuoteData, address string, logger *zap.Logger) {
	if address != "" {
		conf.Server.Address = address
	}
	cfg, err := server.NewConfig(conf.Server)
	if err != nil {
		logger.Fatal("invalid server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	storePath := conf.Store.Path
	if storePath == "" {
		storePath = constants.DefaultStorePath
	}
	a, err := app.New(conf, logger, app.Options{
		Seed:      seed,
		StorePath: storePath,
		ExportDir: filepath.Dir(storePath),
	})
	if err != nil {
		logger.Fatal("failed to start quoting session",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = a.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := server.NewHandler(a, logger, cfg.BodySizeBytes(), version)
	if err := server.ListenAndServe(ctx, cfg, h, logger); err != nil {
		logger.Error("editor API stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
