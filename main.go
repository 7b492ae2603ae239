package main

import (
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Cortexa-LLC/mcp/src/gridmd/config"
	"github.com/Cortexa-LLC/mcp/src/gridmd/converter"
	"github.com/Cortexa-LLC/mcp/src/gridmd/logging"
	"github.com/Cortexa-LLC/mcp/src/gridmd/session"
)

// Server identity constants.
const (
	serverName    = "gridmd"
	serverVersion = "0.1.0"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	presets, err := cfg.Presets()
	if err != nil {
		slog.Error("load presets", "path", cfg.PresetsPath, "error", err)
		os.Exit(1)
	}

	s := server.NewMCPServer(serverName, serverVersion)
	registerTools(s, &toolset{
		conv:    converter.NewConverter(cfg),
		store:   session.NewStore(),
		presets: presets,
	})

	slog.Info("mcp server starting", "name", serverName, "version", serverVersion)
	if err := server.ServeStdio(s); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
