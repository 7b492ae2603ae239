// Command gridmd converts tables between spreadsheets, documents and text
// formats, and serves the HTTP editing API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const envFileName = ".env"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(loadEnvFile()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadEnvFile loads .env from the working directory when it exists and
// returns its name, or "" when there is none. Variables already set in the
// environment win.
func loadEnvFile() string {
	if err := godotenv.Load(envFileName); err != nil {
		return ""
	}
	return envFileName
}
