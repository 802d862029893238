package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"

	"github.com/user/carbontracker/backend/internal/cli"
	"github.com/user/carbontracker/backend/internal/config"
)

var configPath = flag.String("config", os.Getenv("TRACKER_CONFIG_PATH"), "Path to the client config file (YAML).")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	app := &cli.App{}
	cli.Register(commander, app)

	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	*app = *cli.NewApp(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := commander.Execute(ctx)
	stop()
	os.Exit(int(code))
}
