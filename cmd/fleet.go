package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swiftresponder/swiftresponder/config"
	"github.com/swiftresponder/swiftresponder/simulator"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the generated fleet",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	for _, a := range simulator.GenerateFleet(cfg.Fleet) {
		driver := "-"
		if a.Driver != nil {
			driver = fmt.Sprintf("%s (%.1f)", a.Driver.Name, a.Driver.Rating)
		}
		fmt.Printf("%s  %-14s %-10s %s  %.4f,%.4f  %s\n",
			a.ID, a.Type, a.Status, a.Vehicle, a.Location.Lat, a.Location.Lng, driver)
	}
	return nil
}
