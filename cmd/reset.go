package cmd

import (
	"github.com/spf13/cobra"
)

var resetYes bool

// resetCmd wipes the inventory and restores the demo records.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the whole inventory and restore the demo records",
	Long: `Deletes every rack, server, service and network device, then inserts the demo
server and demo network device. Settings are kept. The demo data is not re-added on
later starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		if !confirmDestructiveAction(resetYes, "This deletes the whole inventory.") {
			rt.log.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		if err := rt.store.Reset(cmd.Context()); err != nil {
			return err
		}
		rt.log.Info("Inventory reset to demo data")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Auto-confirm (non-interactive)")
	RootCmd.AddCommand(resetCmd)
}
