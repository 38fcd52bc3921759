package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/whxxx2005-coder/xianyi/internal/config"
	"github.com/whxxx2005-coder/xianyi/internal/printer"
	"github.com/whxxx2005-coder/xianyi/internal/syncer"
	"github.com/whxxx2005-coder/xianyi/pkg/assetstore"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xianyi",
	Short: "Xianyi - offline-first museum exhibit guide",
	Long: `Xianyi is the device-side guide for the 鲜衣怒马少年时 exhibition.

It keeps every asset (posters, relic cards, narration audio) in a durable
on-device store, resolves assets through a fixed durable → bundled → remote
fallback chain, and syncs the full asset set between devices that share a
sync code.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFileName,
		"path to the device configuration file")
}

// loadConfig reads the device configuration, with a friendly error when the
// device has not been initialized yet.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, printer.Error("Failed to load configuration", err.Error(), []string{
			"Run 'xianyi init' to set this device up",
			"Pass --config with an explicit path to xianyi.yml",
		})
	}
	return cfg, nil
}

// storePath locates the durable asset database inside the data directory.
func storePath(cfg *config.Config) string {
	return filepath.Join(cfg.Device.DataDir, "assets.db")
}

// openStore opens the durable asset store described by cfg.
func openStore(cfg *config.Config) (*assetstore.Store, error) {
	store, err := assetstore.Open(storePath(cfg))
	if err != nil {
		return nil, printer.Error("Failed to open asset store", err.Error(), []string{
			fmt.Sprintf("Check that %s is writable", cfg.Device.DataDir),
		})
	}
	return store, nil
}

// newCoordinator builds the sync coordinator, requiring the sync section of
// the configuration.
func newCoordinator(cfg *config.Config, store *assetstore.Store) (*syncer.Coordinator, error) {
	if !cfg.SyncEnabled() {
		return nil, printer.Error("Sync is not configured", "xianyi.yml has no sync section.", []string{
			"Add a sync section with redis_addr to xianyi.yml",
		})
	}
	return syncer.New(&redis.Options{
		Addr:     cfg.Sync.RedisAddr,
		Password: cfg.Sync.RedisPassword,
		DB:       cfg.Sync.RedisDB,
	}, store), nil
}

// remoteTimeout returns the configured remote probe timeout.
func remoteTimeout(cfg *config.Config) time.Duration {
	return time.Duration(*cfg.Resolver.RemoteTimeoutSeconds) * time.Second
}
