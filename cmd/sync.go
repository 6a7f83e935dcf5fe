package cmd

import (
	"fmt"

	"nebula/feature/network"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for sync network command
	syncDryRun bool
	syncYes    bool
	syncHost   string
	syncUser   string
)

// syncCmd is the parent command for discovery syncs.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync inventory records from external systems",
}

// networkSyncCmd re-runs the controller sync with the stored credentials.
var networkSyncCmd = &cobra.Command{
	Use:   "network",
	Short: "Replace discovered network devices with the UniFi controller's listing",
	Long: `Pulls the device list from the UniFi controller using the stored credentials and
replaces every network device that was not added by hand.

Examples:
  # Show what would change
  sync network --dry-run

  # Apply without prompting
  sync network --yes`,
	RunE: runNetworkSync,
}

func init() {
	networkSyncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Only print the plan")
	networkSyncCmd.Flags().BoolVar(&syncYes, "yes", false, "Auto-confirm (non-interactive)")
	networkSyncCmd.Flags().StringVar(&syncHost, "host", "", "Controller host (defaults to the stored one)")
	networkSyncCmd.Flags().StringVar(&syncUser, "user", "", "Controller user (defaults to the stored one)")

	syncCmd.AddCommand(networkSyncCmd)
	RootCmd.AddCommand(syncCmd)
}

func runNetworkSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	svc := network.NewService(rt.store, rt.credentials(), rt.networkConfig(), rt.log)
	req := network.PullRequest{Host: syncHost, User: syncUser}

	// Step 1: Plan
	rt.log.Info("Planning controller sync...")
	planned, err := svc.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to plan controller sync: %w", err)
	}
	printSyncReport(rt.log, planned.Result)

	if syncDryRun {
		rt.log.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(planned.Result.Actions) == 0 {
		rt.log.Info("Network devices already match the controller.")
		return nil
	}

	// Step 2: Apply the plan shown above
	if !confirmDestructiveAction(syncYes, "Discovered network devices will be replaced.") {
		rt.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	result, err := svc.Apply(ctx, planned)
	if err != nil {
		return fmt.Errorf("failed to apply controller sync: %w", err)
	}
	rt.log.Info("Controller sync applied", zap.Int("devices", len(result.Devices)))
	return nil
}

// printSyncReport logs the plan summary and a sample of the actions.
func printSyncReport(l *zap.Logger, result *network.PullResult) {
	s := result.Summary

	l.Info("Sync report",
		zap.String("variant", result.Variant),
		zap.Int("total_items", s.TotalItems),
		zap.Int("added", s.Added),
		zap.Int("updated", s.Updated),
		zap.Int("removed", s.Removed),
		zap.Int("unchanged", s.Unchanged),
	)

	maxShow := 5
	if len(result.Actions) < maxShow {
		maxShow = len(result.Actions)
	}
	for _, action := range result.Actions[:maxShow] {
		l.Info("Planned action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(result.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(result.Actions)-maxShow))
	}
}
