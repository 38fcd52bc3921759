package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/whxxx2005-coder/xianyi/internal/printer"
)

var forceInit bool

const defaultConfig = `version: "1.0"

device:
  data_dir: ./data
  bundled_dir: ./bundled

# Uncomment to enable cross-device sync through a shared Redis server.
# sync:
#   redis_addr: localhost:6379

resolver:
  remote_timeout_seconds: 10
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize this device",
	Long: `Initialize this device with a default configuration and directory layout.

Creates:
  • xianyi.yml - Device configuration file
  • data/      - Durable store, settings, and session logs
  • bundled/   - Root for the shipped fallback assets

Use --force to overwrite an existing xianyi.yml.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing xianyi.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !forceInit {
		return printer.Error("Device already initialized",
			fmt.Sprintf("%s already exists.", configPath),
			[]string{"Use --force to overwrite it"})
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return printer.Error("Failed to write configuration", err.Error(), nil)
	}

	for _, dir := range []string{
		"data",
		filepath.Join("bundled", "assets", "images"),
		filepath.Join("bundled", "assets", "audio"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return printer.Error("Failed to create directory", err.Error(), nil)
		}
	}

	printer.Success("Device initialized\n")
	printer.Info("  %s written\n", configPath)
	printer.Info("  data/ and bundled/ created\n")
	return nil
}
