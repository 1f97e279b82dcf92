package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/baohaus/expeditor/internal/batch"
	"github.com/baohaus/expeditor/internal/cache"
	"github.com/baohaus/expeditor/internal/classify"
	"github.com/baohaus/expeditor/internal/models"
	"github.com/baohaus/expeditor/internal/reconcile"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run a single extraction pass and print the batch plan",
	Long: `extract takes one snapshot from the configured source, reconciles and
batches it, and prints the resulting batch plan to stdout. Useful for
inspecting captured snapshot files without starting the full loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return extractOnce(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func extractOnce(ctx context.Context, cfg *models.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	snaps, err := buildSource(cfg).Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("taking snapshot: %w", err)
	}

	reconciler := reconcile.New(classify.NewTaxonomy())
	store := cache.NewStore()
	engine, err := batch.NewEngine(cfg.BatchCapacity)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(snaps),
		progressbar.OptionSetDescription("reconciling orders"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	now := time.Now()
	var live []*models.Order
	for _, snap := range snaps {
		cached := store.FindMatching(snap.OrderNumber, snap.CustomerName, 0)
		ord, err := reconciler.Reconcile(snap, cached, now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nskipping snapshot (number=%q customer=%q): %v\n",
				snap.OrderNumber, snap.CustomerName, err)
			bar.Add(1)
			continue
		}
		copied := ord
		live = append(live, &copied)
		bar.Add(1)
	}
	fmt.Fprintln(os.Stderr)

	engine.Refresh(live)

	for _, b := range engine.Batches() {
		fmt.Printf("Batch %d [%s, %s] %d/%d orders\n",
			b.Number, b.Status, b.Urgency, b.Orders.Len(), b.Capacity)
		for _, ref := range b.Orders.Refs() {
			fmt.Printf("  #%s %s (%dm, %d items)\n",
				ref.OrderNumber, ref.CustomerName, ref.ElapsedMinutes, ref.ItemCount)
		}
		for _, g := range b.Items {
			fmt.Printf("    %d× %s", g.BatchQuantity, g.FullName)
			if g.Size != models.NoSize {
				fmt.Printf(" [%s]", g.Size)
			}
			fmt.Println()
		}
	}
	return nil
}
