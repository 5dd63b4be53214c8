package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/swiftresponder/swiftresponder/app"
	"github.com/swiftresponder/swiftresponder/config"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/tracker"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

var (
	dispatchNeeds    string
	dispatchSeverity string
	dispatchLat      float64
	dispatchLng      float64
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run a one-shot test dispatch and follow it to arrival",
	RunE:  runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchNeeds, "needs", "chest pain", "medical needs description")
	dispatchCmd.Flags().StringVar(&dispatchSeverity, "severity", "urgent", "severity: critical, urgent or moderate")
	dispatchCmd.Flags().Float64Var(&dispatchLat, "lat", 34.0522, "caller latitude")
	dispatchCmd.Flags().Float64Var(&dispatchLng, "lng", -118.2437, "caller longitude")
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("dispatch-command").Errorf("service close: %v", err)
		}
	}()

	go svc.Tracker.Run(ctx)

	req := model.DispatchRequest{
		MedicalNeeds: dispatchNeeds,
		Severity:     model.Severity(dispatchSeverity),
		Location:     model.LatLng{Lat: dispatchLat, Lng: dispatchLng},
		Timestamp:    time.Now(),
	}
	if err := svc.Tracker.Dispatch(ctx, req); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	snap := svc.Tracker.Snapshot()
	fmt.Printf("dispatched %s to %s (%.1f km, eta %.0f min)\n",
		snap.Dispatched.ID, snap.Hospital.Name, snap.DistanceKM, snap.ETAMin)

	ticker := time.NewTicker(cfg.Tracker.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			svc.Tracker.Reset()
			return nil
		case <-ticker.C:
			snap = svc.Tracker.Snapshot()
			if snap.Status == tracker.StatusArrived {
				fmt.Printf("arrived at %s\n", snap.Hospital.Name)
				svc.Tracker.Reset()
				return nil
			}
			fmt.Printf("en route: %.2f km remaining, eta %.0f min\n", snap.DistanceKM, snap.ETAMin)
		}
	}
}
