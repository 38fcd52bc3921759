package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/whxxx2005-coder/xianyi/internal/printer"
	"github.com/whxxx2005-coder/xianyi/internal/settings"
	"github.com/whxxx2005-coder/xianyi/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Share assets between devices with the same sync code",
}

var syncCodeCmd = &cobra.Command{
	Use:   "code [<code>]",
	Short: "Show or set the sync code",
	Long: `Show the device's sync code, or set it when a code is given.

Devices sharing the same code push to and pull from the same bundle.
Setting an empty code with 'xianyi sync code ""' disables sync.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSyncCode,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the full asset set under the sync code",
	Args:  cobra.NoArgs,
	RunE:  runSyncPush,
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download and apply the bundle for the sync code",
	Args:  cobra.NoArgs,
	RunE:  runSyncPull,
}

func init() {
	syncCmd.AddCommand(syncCodeCmd, syncPushCmd, syncPullCmd)
	rootCmd.AddCommand(syncCmd)
}

// reportMilestones prints transfer phases as they happen.
func reportMilestones(m syncer.Milestone, assets int) {
	switch m {
	case syncer.MilestonePackaging:
		printer.Step("packaging\n")
	case syncer.MilestoneTransferring:
		if assets >= 0 {
			printer.Step("transferring %d assets\n", assets)
		} else {
			printer.Step("transferring\n")
		}
	}
}

func runSyncCode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mgr := settings.NewManager(cfg.Device.DataDir)

	if len(args) == 0 {
		code, err := mgr.SyncCode()
		if err != nil {
			return printer.Error("Failed to read settings", err.Error(), nil)
		}
		if code == "" {
			printer.Info("No sync code set.\n")
		} else {
			printer.Info("%s\n", code)
		}
		return nil
	}

	if err := mgr.SetSyncCode(args[0]); err != nil {
		return printer.Error("Failed to save sync code", err.Error(), nil)
	}
	if args[0] == "" {
		printer.Success("Sync code cleared\n")
	} else {
		printer.Success("Sync code set to %s\n", args[0])
	}
	return nil
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	code, err := settings.NewManager(cfg.Device.DataDir).SyncCode()
	if err != nil {
		return printer.Error("Failed to read settings", err.Error(), nil)
	}

	coord, err := newCoordinator(cfg, store)
	if err != nil {
		return err
	}
	defer coord.Close()

	if err := coord.Push(cmd.Context(), code, reportMilestones); err != nil {
		if errors.Is(err, syncer.ErrNoSyncCode) {
			return printer.Error("No sync code set", "Push needs a code so other devices can find the bundle.", []string{
				"Run 'xianyi sync code <code>' first",
			})
		}
		return printer.Error("Push failed", err.Error(), []string{
			"Check the connection to " + cfg.Sync.RedisAddr,
		})
	}

	printer.Success("Pushed under code %s\n", code)
	return nil
}

func runSyncPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	code, err := settings.NewManager(cfg.Device.DataDir).SyncCode()
	if err != nil {
		return printer.Error("Failed to read settings", err.Error(), nil)
	}

	coord, err := newCoordinator(cfg, store)
	if err != nil {
		return err
	}
	defer coord.Close()

	if err := coord.Pull(cmd.Context(), code, reportMilestones); err != nil {
		switch {
		case errors.Is(err, syncer.ErrNoSyncCode):
			return printer.Error("No sync code set", "Pull needs a code to know which bundle to fetch.", []string{
				"Run 'xianyi sync code <code>' first",
			})
		case syncer.IsNotFound(err):
			return printer.Error("Nothing to pull",
				"No device has pushed under code "+code+" yet.", nil)
		default:
			return printer.Error("Pull failed", err.Error(), []string{
				"Check the connection to " + cfg.Sync.RedisAddr,
			})
		}
	}

	printer.Success("Pulled bundle for code %s\n", code)
	return nil
}
