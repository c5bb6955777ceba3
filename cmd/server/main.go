package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
)

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("picabord"),
		kong.Description("PICABORD blog content server and content tools."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&Globals{CLI: cli}); err != nil {
		log.Error().Err(err).Str("command", ctx.Command()).Msg("Command failed")
		os.Exit(1)
	}
}
