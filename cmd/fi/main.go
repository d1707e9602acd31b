package main

import (
	"context"
	"flag"
	"os"

	"fi/internal/cli"
	"fi/internal/logger"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()
	log := logger.New()

	subcommands.Register(subcommands.HelpCommand(), "help")
	subcommands.Register(subcommands.FlagsCommand(), "help")
	cli.Register(subcommands.DefaultCommander, log)

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
