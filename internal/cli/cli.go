package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/factortree/pkg/buildinfo"
	"github.com/matzehuels/factortree/pkg/cache"
)

// Execute runs the factortree CLI and returns an error if any command
// fails. This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, loads the TOML config file, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext.
func Execute() error {
	var (
		verbose    bool
		configPath string
		cfg        Config
	)

	root := &cobra.Command{
		Use:          "factortree",
		Short:        "factortree runs exact inference over discrete factor tables",
		Long:         `factortree solves discrete graphical-model inference tasks over factor tables: k-best optimisation, log partition functions, exact Boltzmann sampling, marginals, and tied-optimum counting, via bucket-tree variable elimination. Approximate annealing and descent solvers cover problems with no tractable elimination order.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))

			loaded, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")

	root.AddCommand(newOrderCmd(&cfg))
	root.AddCommand(newOptimizeCmd(&cfg))
	root.AddCommand(newSampleCmd(&cfg))
	root.AddCommand(newCountCmd(&cfg))
	root.AddCommand(newAnnealCmd())
	root.AddCommand(newDescendCmd())
	root.AddCommand(newRenderCmd(&cfg))
	root.AddCommand(newCacheCmd(&cfg))
	root.AddCommand(newServeCmd(&cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return root.ExecuteContext(ctx)
}

// openCache builds the configured cache backend. Errors degrade to a null
// cache with a warning so caching never blocks solving.
func openCache(ctx context.Context, cfg *Config) cache.Cache {
	logger := loggerFromContext(ctx)
	switch cfg.Cache.Backend {
	case "none", "":
		return cache.NewNullCache()
	case "redis":
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return c
	case "file":
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = defaultCacheDir()
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			logger.Warn("file cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return c
	}
	logger.Warn("unknown cache backend, caching disabled", "backend", cfg.Cache.Backend)
	return cache.NewNullCache()
}

// parseIntList parses a comma-separated list of integers ("0,3,2").
// An empty string yields nil.
func parseIntList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad integer %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}
