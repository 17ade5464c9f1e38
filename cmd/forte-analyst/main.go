package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rawitjan/Forte-hackathon/internal/analyst"
	"github.com/rawitjan/Forte-hackathon/internal/config"
	"github.com/rawitjan/Forte-hackathon/internal/confluence"
	"github.com/rawitjan/Forte-hackathon/internal/gateway"
	"github.com/rawitjan/Forte-hackathon/internal/store"
	"github.com/rawitjan/Forte-hackathon/internal/telemetry"
)

func main() {
	var cfg config.Config

	flag.StringVar(&cfg.Mode, "mode", config.DefaultMode, "Operating mode (new-product|api-integration|reporting)")
	flag.StringVar(&cfg.SessionID, "session-id", "", "Resume an existing session by ID")
	flag.StringVar(&cfg.DBPath, "db", "analyst.db", "Path to the session database")
	flag.StringVar(&cfg.GeminiModel, "model", "", "Gemini model name (default from GEMINI_MODEL or gemini-2.5-pro)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.Parse()

	cfg.LoadEnv()

	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	gw, err := gateway.NewGemini(cfg.GeminiKey, cfg.GeminiModel, logger, tracer, meter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize inference gateway: %v\n", err)
		os.Exit(1)
	}

	st := store.Open(cfg.DBPath, logger)
	wiki := confluence.New(cfg.ConfluenceURL, cfg.ConfluenceUser, cfg.ConfluenceToken, cfg.ConfluenceSpace, logger)

	a := analyst.New(cfg, st, gw, wiki, logger, tracer)

	if err := a.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if closer, ok := st.(*store.SQLiteStore); ok {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close session store", "error", err)
		}
	}
}
