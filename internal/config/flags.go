package config

import (
	"flag"
	"fmt"
	"strconv"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagSeed    = flag.String("seed", "", "Override the terrain noise seed")
	flagWorkers = flag.Int("workers", 0, "Background generation workers (0 = one per CPU)")
	flagCache   = flag.String("cache", "", "Enable the height cache at this path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ParseArgs parses args with the command-line flag set, for tools that
// take a subcommand before their flags.
func ParseArgs(args []string) error {
	return flag.CommandLine.Parse(args)
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != "" {
		seed, err := strconv.ParseInt(*flagSeed, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: -seed %q is not an integer", ErrInvalid, *flagSeed)
		}
		cfg.Terrain.Height.Noise.Seed = seed
	}
	if *flagWorkers > 0 {
		cfg.Streamer.Workers = *flagWorkers
	}
	if *flagCache != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.Path = *flagCache
	}
	return nil
}
