package main

import (
	"fmt"
	"os"
	"strings"

	"go-recruitment-platform/config"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
)

var version = "dev"

func main() {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("recruitctl"),
		kong.Description("Operator tooling for the recruitment platform."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if cli.Verbose || envBool("RECRUITCTL_VERBOSE") {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	runCtx := &Context{
		Out:       os.Stdout,
		Config:    cfg,
		Logger:    logger,
		OpenCache: redisCache(cfg),
	}
	if err := kctx.Run(runCtx); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
