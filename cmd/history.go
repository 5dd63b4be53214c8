package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/swiftresponder/swiftresponder/config"
	"github.com/swiftresponder/swiftresponder/core/history"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

var (
	historyStart   string
	historyEnd     string
	historyOutcome string
	historyStats   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query dispatch history records",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyStart, "start", "", "earliest record timestamp (RFC3339)")
	historyCmd.Flags().StringVar(&historyEnd, "end", "", "latest record timestamp (RFC3339)")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "", "filter by outcome: completed, cancelled or transferred")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "print aggregate statistics instead of records")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var store history.Store
	if cfg.History.Backend == "memory" {
		store = history.NewMemoryStore()
	} else {
		store, err = history.NewJSONLStore(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("history store: %w", err)
		}
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.New("history-command").Errorf("store close: %v", err)
		}
	}()

	q := history.Query{Outcome: history.Outcome(historyOutcome)}
	if historyStart != "" {
		if q.Start, err = time.Parse(time.RFC3339, historyStart); err != nil {
			return fmt.Errorf("parse start: %w", err)
		}
	}
	if historyEnd != "" {
		if q.End, err = time.Parse(time.RFC3339, historyEnd); err != nil {
			return fmt.Errorf("parse end: %w", err)
		}
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if historyStats {
		return enc.Encode(history.Compute(recs))
	}
	return enc.Encode(recs)
}
