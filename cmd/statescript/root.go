package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/statescript"
	"github.com/aretw0/statescript/internal/logging"
	"github.com/aretw0/statescript/pkg/adapters/file"
	"github.com/aretw0/statescript/pkg/adapters/memory"
	"github.com/aretw0/statescript/pkg/adapters/redis"
	"github.com/aretw0/statescript/pkg/observability"
	"github.com/aretw0/statescript/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "statescript",
		Short:         "Statescript builds behavior graphs for game entities",
		Long:          `Statescript validates, builds and inspects node graphs authored in the Statescript editor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("dir", ".", "Directory holding the graph documents")
	root.PersistentFlags().String("store", "file", "Graph store: file, loam, redis or memory")
	root.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address (store=redis)")
	root.PersistentFlags().String("redis-password", "", "Redis password (store=redis)")
	root.PersistentFlags().Int("redis-db", 0, "Redis database (store=redis)")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	root.PersistentFlags().BoolP("verbose", "v", false, "Shorthand for --log-level=debug")

	root.AddCommand(
		newValidateCmd(),
		newBuildCmd(),
		newCatalogCmd(),
		newGraphCmd(),
		newDiffCmd(),
		newPushCmd(),
		newWatchCmd(),
		newServeCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return logging.New(slog.LevelDebug), nil
	}
	name, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// openStore returns the loader selected by --store. A nil loader with no
// error means the engine should open the Loam repository at --dir itself.
func openStore(cmd *cobra.Command) (ports.GraphLoader, func() error, error) {
	dir, _ := cmd.Flags().GetString("dir")
	kind, _ := cmd.Flags().GetString("store")
	noop := func() error { return nil }

	switch kind {
	case "file":
		return file.New(dir), noop, nil
	case "loam":
		return nil, noop, nil
	case "memory":
		return memory.NewStore(), noop, nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		store := redis.New(addr, password, db)
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q (want file, loam, redis or memory)", kind)
}

type engineConfig struct {
	metrics prometheus.Registerer
}

type engineOption func(*engineConfig)

func withMetrics(reg prometheus.Registerer) engineOption {
	return func(c *engineConfig) { c.metrics = reg }
}

// newEngine wires an engine from the persistent flags. The returned func
// releases the store.
func newEngine(cmd *cobra.Command, opts ...engineOption) (*statescript.Engine, func() error, error) {
	var cfg engineConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	loader, closeStore, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	dir, _ := cmd.Flags().GetString("dir")
	engOpts := []statescript.Option{
		statescript.WithLogger(logger),
		statescript.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}
	if loader != nil {
		engOpts = append(engOpts, statescript.WithLoader(loader))
	}
	if cfg.metrics != nil {
		m, err := observability.NewMetrics(cfg.metrics)
		if err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		engOpts = append(engOpts, statescript.WithMetrics(m))
	}

	eng, err := statescript.New(dir, engOpts...)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to init engine: %w", err)
	}
	return eng, closeStore, nil
}
