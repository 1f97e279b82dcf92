package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/baohaus/expeditor/internal/archive"
	"github.com/baohaus/expeditor/internal/batch"
	"github.com/baohaus/expeditor/internal/broadcast"
	"github.com/baohaus/expeditor/internal/cache"
	"github.com/baohaus/expeditor/internal/classify"
	"github.com/baohaus/expeditor/internal/consolidator"
	"github.com/baohaus/expeditor/internal/models"
	"github.com/baohaus/expeditor/internal/reconcile"
	"github.com/baohaus/expeditor/internal/repositories/postgres"
	"github.com/baohaus/expeditor/internal/source"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "expeditor",
	Short: "Consolidates live restaurant orders into prep batches",
	Long: `expeditor polls a live order feed, reconciles each order against
cached upstream data, groups identical items across orders, assigns
orders to prep batches oldest-first, and broadcasts the consolidated
state so every terminal in the store shows the same view.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if err := run(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func run(cfg *models.Config) error {
	if cfg.InstanceID == "" {
		cfg.InstanceID = cuid.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := cache.NewStore()
	if cfg.PostgresEnabled {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()

		repo := postgres.NewCachedOrderRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		store = cache.NewStore(cache.WithRepository(repo))
		if err := store.WarmUp(ctx); err != nil {
			log.Printf("cache warm-up failed, starting cold: %v", err)
		}
	}

	engine, err := batch.NewEngine(cfg.BatchCapacity,
		batch.WithNewBatchNotifier(func(b *models.Batch) {
			log.Printf("new batch %d opened", b.Number)
		}))
	if err != nil {
		return err
	}

	transport, err := broadcast.ForConfig(cfg)
	if err != nil {
		return fmt.Errorf("setting up broadcast transport: %w", err)
	}
	defer transport.Close()

	var opts []consolidator.Option
	if cfg.ArchiveEnabled {
		archiver, err := archive.New(cfg)
		if err != nil {
			return fmt.Errorf("setting up archive: %w", err)
		}
		opts = append(opts, consolidator.WithArchiver(archiver))
	}

	cons := consolidator.New(
		cfg,
		buildSource(cfg),
		store,
		reconcile.New(classify.NewTaxonomy()),
		engine,
		transport,
		consolidator.StaticLeadership(cfg.Leader),
		opts...,
	)

	if !cfg.Leader && cfg.KafkaEnabled {
		listener, err := broadcast.NewListener(cfg)
		if err != nil {
			return fmt.Errorf("setting up follower listener: %w", err)
		}
		defer listener.Close()
		go func() {
			if err := listener.Listen(ctx, cons.ApplySnapshot); err != nil && ctx.Err() == nil {
				log.Printf("follower listener stopped: %v", err)
			}
		}()
	}

	log.Printf("expeditor %s starting (leader=%v poll=%s capacity=%d)",
		cfg.InstanceID, cfg.Leader, cfg.PollInterval, engine.Capacity())
	return cons.Run(ctx)
}

func buildSource(cfg *models.Config) source.SnapshotSource {
	var inner source.SnapshotSource
	if cfg.Simulate {
		inner = source.NewSimulatedSource(cfg.SimulateSeed)
	} else {
		inner = source.NewFileSource(viper.GetString("snapshot_file"))
	}
	return source.NewRetryingSource(inner, cfg.SourceRetries, cfg.SourceBackoff)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.PersistentFlags().Bool("leader", true, "Extract and broadcast; followers only replay broadcasts")
	rootCmd.PersistentFlags().String("instance-id", "", "Stable identifier for this terminal")
	rootCmd.PersistentFlags().Duration("poll-interval", models.DefaultPollInterval, "How often to poll the order feed")
	rootCmd.PersistentFlags().Duration("debounce-interval", models.DefaultDebounceInterval, "Settle time for order-count change triggers")
	rootCmd.PersistentFlags().Duration("cleanup-interval", models.DefaultCleanupInterval, "How often to purge completed orders")
	rootCmd.PersistentFlags().Int("batch-capacity", models.DefaultBatchCapacity, "Orders per prep batch")
	rootCmd.PersistentFlags().Bool("simulate", false, "Run against a simulated order feed")
	rootCmd.PersistentFlags().Int64("simulate-seed", 0, "Seed for the simulated feed")
	rootCmd.PersistentFlags().String("snapshot-file", "", "JSON file to read order snapshots from")
	rootCmd.PersistentFlags().Bool("kafka-enabled", false, "Broadcast state over Kafka")
	rootCmd.PersistentFlags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.PersistentFlags().String("broadcast-topic", "expeditor_state", "Topic for state broadcasts")
	rootCmd.PersistentFlags().String("output-file", "", "Append state snapshots to this file instead")
	rootCmd.PersistentFlags().Bool("postgres-enabled", false, "Persist the order cache to Postgres")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string")
	rootCmd.PersistentFlags().Bool("archive-enabled", false, "Archive completed orders to parquet")
	rootCmd.PersistentFlags().String("archive-path", "archive", "Base path for archive files")

	viper.BindPFlags(rootCmd.PersistentFlags())
	viper.RegisterAlias("output_file_path", "output-file")
	viper.RegisterAlias("instance_id", "instance-id")
	viper.RegisterAlias("poll_interval", "poll-interval")
	viper.RegisterAlias("debounce_interval", "debounce-interval")
	viper.RegisterAlias("cleanup_interval", "cleanup-interval")
	viper.RegisterAlias("batch_capacity", "batch-capacity")
	viper.RegisterAlias("simulate_seed", "simulate-seed")
	viper.RegisterAlias("snapshot_file", "snapshot-file")
	viper.RegisterAlias("kafka_enabled", "kafka-enabled")
	viper.RegisterAlias("kafka_broker_list", "kafka-broker-list")
	viper.RegisterAlias("broadcast_topic", "broadcast-topic")
	viper.RegisterAlias("postgres_enabled", "postgres-enabled")
	viper.RegisterAlias("database_url", "database-url")
	viper.RegisterAlias("archive_enabled", "archive-enabled")
	viper.RegisterAlias("archive_path", "archive-path")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".expeditor")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
