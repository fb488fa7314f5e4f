package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the trainer server"`
	Play     PlayCmd          `cmd:"" help:"Play a training session in the terminal"`
	Drill    DrillCmd         `cmd:"" help:"Practice card counting with timed drills"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate a betting strategy over many rounds"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjacktrainer"),
		kong.Description("Blackjack card counting trainer"),
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
