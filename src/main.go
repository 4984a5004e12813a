package main

import (
	"log/slog"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/GSH-LAN/Unwindia_cricket/src/commands"
	"github.com/GSH-LAN/Unwindia_cricket/src/environment"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: environment.LogLevel,
	}))
	slog.SetDefault(logger)

	err := godotenv.Load()
	if err != nil && !strings.Contains(err.Error(), "no such file") {
		log.Fatal().Err(err).Msg("Error loading .env file")
	}

	serveCmd := commands.NewServeCommand()
	rootCmd := &cobra.Command{
		Use:           "unwindia-cricket",
		Short:         "Ball-by-ball cricket scoring service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(commands.NewReplayCommand())

	if err = rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Error running command")
	}
}
