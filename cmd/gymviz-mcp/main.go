package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/cabinz/gym-track-visualizer/internal/config"
	"github.com/cabinz/gym-track-visualizer/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// gymviz-mcp serves the MCP tools over stdio against a remote gymviz server,
// for MCP clients that launch a local process.
func main() {
	serverURL := flag.String("server", "", "gymviz server URL (e.g. https://gymviz.tail1234.ts.net)")
	configPath := flag.String("config", "", "config file for metric thresholds (default: built-in thresholds)")
	flag.Parse()

	// stdout carries the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymviz-mcp -server <URL> [-config config.yaml]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadAnalysis(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	s := mcp.New(mcp.NewHTTPClient(*serverURL), cfg.Metrics.Config, Version, log)
	log.Info("gymviz-mcp serving on stdio", "server", *serverURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server stopped", "error", err)
		os.Exit(1)
	}
}
