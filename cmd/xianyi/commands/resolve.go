package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/whxxx2005-coder/xianyi/internal/handle"
	"github.com/whxxx2005-coder/xianyi/internal/printer"
	"github.com/whxxx2005-coder/xianyi/internal/resolver"
)

var resolveRemoteURL string

var resolveCmd = &cobra.Command{
	Use:   "resolve <key>",
	Short: "Resolve an asset key through the fallback chain",
	Long: `Resolve an asset key the way the guide does at display time:
durable store first, bundled fallback file second, remote URL last.

Prints where the asset was found, or 'unavailable' when no source has it.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveRemoteURL, "remote", "", "remote URL to try as the last candidate")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	r := resolver.New(store, handle.NewManager(), cfg.Device.BundledDir, remoteTimeout(cfg))
	binding := r.NewBinding()
	defer binding.Close()

	binding.Request(cmd.Context(), args[0], resolveRemoteURL)
	for res := range binding.Updates() {
		switch res.State {
		case resolver.StateLoading:
			continue
		case resolver.StateUnavailable:
			printer.Warning("%s: unavailable\n", args[0])
			return nil
		case resolver.StateResolved:
			switch res.Provenance {
			case resolver.ProvenanceDurable:
				if res.Handle != nil {
					rd, err := res.Handle.Acquire()
					if err != nil {
						return printer.Error("Failed to read resolved asset", err.Error(), nil)
					}
					n, err := io.Copy(io.Discard, rd)
					rd.Close()
					if err != nil {
						return printer.Error("Failed to read resolved asset", err.Error(), nil)
					}
					printer.Success("%s: durable store (%d bytes)\n", args[0], n)
				} else {
					printer.Success("%s: durable store → %s\n", args[0], res.URL)
				}
			case resolver.ProvenanceBundled:
				printer.Success("%s: bundled fallback → %s\n", args[0], res.Path)
			case resolver.ProvenanceRemote:
				printer.Success("%s: remote → %s\n", args[0], res.URL)
			}
			return nil
		}
	}
	return nil
}
