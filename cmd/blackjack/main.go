package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Play at the table in your terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Run basic-strategy simulations"`
	Serve    ServeCmd         `cmd:"" help:"Run the WebSocket table server"`
	Stats    StatsCmd         `cmd:"" help:"Show stored session results"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack round engine, simulator and table server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
