package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/nickrobinson/ditto"
	"github.com/nickrobinson/ditto/config"
	"github.com/spf13/cobra"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// exerciseCmd opens a store from a config file and runs its workload.
var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Open a store and run the configured workload",
	Long: `Open an in-memory store from the config file and run its workload.

Each iteration puts every key, reads it back through the two-call buffer
protocol (size query, then a sized read), and deletes every key. The
configured number of subscribers count change notifications so the fan-out
path is exercised alongside the table.

The run can be interrupted with Ctrl+C; partial statistics are reported.

Example:
  ditto exercise -c config.yaml
  ditto exercise --config /etc/ditto/config.yaml`,
	RunE: runExercise,
}

func init() {
	rootCmd.AddCommand(exerciseCmd)

	exerciseCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = exerciseCmd.MarkFlagRequired("config")
}

func runExercise(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Level())
	logger.Info("config loaded",
		"path", cfg.Path,
		"table_size", cfg.TableSize,
		"max_subscriptions", cfg.MaxSubscriptions,
	)

	store, err := ditto.Open(cfg.Path, config.BuildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var notifications atomic.Int64
	for i := 0; i < cfg.Workload.Subscribers; i++ {
		if _, err := store.Subscribe(ditto.ChangeHandlerFunc(func(string) {
			notifications.Add(1)
		})); err != nil {
			return fmt.Errorf("failed to register subscriber %d: %w", i+1, err)
		}
	}

	stats, err := runWorkload(ctx, store, cfg.Workload)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("workload failed: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		logger.Warn("workload interrupted", "completed_iterations", stats.iterations)
	}

	logger.Info("workload complete",
		"iterations", stats.iterations,
		"puts", stats.puts,
		"gets", stats.gets,
		"deletes", stats.deletes,
		"notifications", notifications.Load(),
		"elapsed_ms", stats.elapsed.Milliseconds(),
	)

	fmt.Printf("Workload finished in %s\n", stats.elapsed.Round(time.Millisecond))
	fmt.Printf("  Iterations:    %d\n", stats.iterations)
	fmt.Printf("  Puts:          %d\n", stats.puts)
	fmt.Printf("  Gets:          %d\n", stats.gets)
	fmt.Printf("  Deletes:       %d\n", stats.deletes)
	fmt.Printf("  Notifications: %d (across %d subscribers)\n",
		notifications.Load(), cfg.Workload.Subscribers)

	return nil
}

// workloadStats accumulates counters while the workload runs.
type workloadStats struct {
	iterations int
	puts       int
	gets       int
	deletes    int
	elapsed    time.Duration
}

// runWorkload drives put/get/delete cycles against the store.
// Returns context.Canceled (with partial stats) if ctx is cancelled mid-run.
func runWorkload(ctx context.Context, store *ditto.Store, w config.WorkloadConfig) (workloadStats, error) {
	var stats workloadStats
	start := time.Now()
	defer func() { stats.elapsed = time.Since(start) }()

	value := make([]byte, w.ValueSize)
	buf := make([]byte, w.ValueSize)

	for iter := 0; iter < w.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		for k := 0; k < w.Keys; k++ {
			key := fmt.Sprintf("key-%06d", k)
			for b := range value {
				value[b] = byte(iter + k + b)
			}

			if err := store.Put(key, value); err != nil {
				return stats, fmt.Errorf("put %q: %w", key, err)
			}
			stats.puts++

			// two-call protocol: size query first, then a sized read
			n, err := store.Get(key, nil)
			if err != nil && !errors.Is(err, ditto.ErrBufferTooSmall) {
				return stats, fmt.Errorf("size query %q: %w", key, err)
			}
			if _, err := store.Get(key, buf[:n]); err != nil {
				return stats, fmt.Errorf("get %q: %w", key, err)
			}
			stats.gets++
		}

		for k := 0; k < w.Keys; k++ {
			key := fmt.Sprintf("key-%06d", k)
			if err := store.Delete(key); err != nil {
				return stats, fmt.Errorf("delete %q: %w", key, err)
			}
			stats.deletes++
		}

		stats.iterations++
	}

	return stats, nil
}
