// Package main provides the venue jukebox demo entry point.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/infra/config"
	"github.com/osa030/venuebox/internal/infra/fixtures"
	"github.com/osa030/venuebox/internal/infra/logger"
)

var (
	app          = kingpin.New("venuebox", "Venue jukebox demo")
	configPath   = app.Flag("config", "Path to config file (default: built-in defaults)").Envar("VENUEBOX_CONFIG").String()
	fixturesPath = app.Flag("fixtures", "Path to fixtures file (overrides config)").String()
	verbose      = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile      = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// simulate command
	simulateCmd      = app.Command("simulate", "Run a scripted evening at the venue (default)").Default()
	simulateSpeed    = simulateCmd.Flag("speed", "Playback speed multiplier (overrides config)").Float64()
	simulateDuration = simulateCmd.Flag("duration", "Stop after this much wall-clock time").Default("30s").Duration()

	// list-songs command
	listSongsCmd   = app.Command("list-songs", "List catalog songs")
	listSongsQuery = listSongsCmd.Flag("query", "Match title, artist or album").Short('q').String()
	listSongsGenre = listSongsCmd.Flag("genre", "Only songs of this genre").Short('g').String()

	// list-users command
	listUsersCmd = app.Command("list-users", "List user accounts")

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available request filters")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	if *fixturesPath != "" {
		cfg.Fixtures.Path = *fixturesPath
	}
	fx, err := fixtures.Load(cfg.Fixtures.Path)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load fixtures: %v", err)
	}

	switch command {
	case listSongsCmd.FullCommand():
		err = listSongs(fx, *listSongsQuery, *listSongsGenre)
	case listUsersCmd.FullCommand():
		printUsers(fx.Users)
	case listFiltersCmd.FullCommand():
		printFilters(cfg)
	default:
		if *simulateSpeed > 0 {
			cfg.Playback.Speed = *simulateSpeed
		}
		err = simulate(cfg, fx, *simulateDuration)
	}
	if err != nil {
		zlog.Error().Msgf("%s failed: %v", command, err)
		closer.Close()
		os.Exit(1)
	}
}
