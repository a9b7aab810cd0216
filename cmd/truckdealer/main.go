package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command. Non-empty values override the
// config file.
type Globals struct {
	Config   string `short:"c" default:"truckdealer.hcl" help:"Path to HCL configuration file"`
	Storage  string `help:"Leaderboard storage backend: file, sqlite or memory (overrides config)"`
	DataPath string `name:"data" help:"Leaderboard data directory (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path for play (overrides config)"`
	NoColor  bool   `help:"Disable colour output"`
}

type CLI struct {
	Globals

	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Play        PlayCmd          `cmd:"" help:"Play a pass-and-play game in the terminal"`
	Simulate    SimulateCmd      `cmd:"" help:"Run seeded headless games and report totals"`
	Leaderboard LeaderboardCmd   `cmd:"" help:"Show or reset the on-device leaderboard"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("truckdealer"),
		kong.Description("Truck the Dealer, a pass-and-play card guessing drinking game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
		kong.BindTo(signalContext(), (*context.Context)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// signalContext returns a context cancelled on interrupt signals.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
