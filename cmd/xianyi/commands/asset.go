package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whxxx2005-coder/xianyi/internal/inventory"
	"github.com/whxxx2005-coder/xianyi/internal/printer"
	"github.com/whxxx2005-coder/xianyi/pkg/assetstore"
)

var (
	assetPutFile string
	assetPutURL  string
	assetGetOut  string
	assetLsOut   string
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage the durable asset store",
}

var assetPutCmd = &cobra.Command{
	Use:   "put <key>",
	Short: "Store an asset under a key",
	Long: `Store an asset in the durable store.

Exactly one payload source is required:
  --file stores the file's bytes as a binary record
  --url stores the URL as a string record

Keys follow the asset naming scheme: 'poster', a relic id like 'relic3',
or a narration key like 'audio_relic7_探索者'.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssetPut,
}

var assetGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Fetch an asset record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetGet,
}

var assetRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Delete an asset record",
	Long:  `Delete an asset record. Deleting a key that is absent succeeds.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetRm,
}

var assetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored assets",
	Long:  `List every record in the durable store, as a table or as JSONL.`,
	Args:  cobra.NoArgs,
	RunE:  runAssetLs,
}

func init() {
	assetPutCmd.Flags().StringVar(&assetPutFile, "file", "", "file whose bytes become a binary record")
	assetPutCmd.Flags().StringVar(&assetPutURL, "url", "", "URL stored as a string record")
	assetGetCmd.Flags().StringVar(&assetGetOut, "out", "", "write a binary payload to this file instead of describing it")
	assetLsCmd.Flags().StringVarP(&assetLsOut, "output", "o", "table", "output format: table or jsonl")

	assetCmd.AddCommand(assetPutCmd, assetGetCmd, assetRmCmd, assetLsCmd)
	rootCmd.AddCommand(assetCmd)
}

func runAssetPut(cmd *cobra.Command, args []string) error {
	key := args[0]
	if (assetPutFile == "") == (assetPutURL == "") {
		return printer.Error("Invalid payload source", "Exactly one of --file or --url is required.", nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var rec assetstore.Record
	if assetPutFile != "" {
		data, err := os.ReadFile(assetPutFile)
		if err != nil {
			return printer.Error("Failed to read payload file", err.Error(), nil)
		}
		rec = assetstore.BinaryRecord(data)
	} else {
		rec = assetstore.StringRecord(assetPutURL)
	}

	if err := store.Put(cmd.Context(), key, rec); err != nil {
		return printer.Error("Failed to store asset", err.Error(), nil)
	}

	printer.Success("Stored %s\n", key)
	return nil
}

func runAssetGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, ok, err := store.Get(cmd.Context(), key)
	if err != nil {
		return printer.Error("Failed to read asset", err.Error(), nil)
	}
	if !ok {
		printer.Info("%s: (absent)\n", key)
		return nil
	}

	switch rec.Kind {
	case assetstore.KindString:
		printer.Info("%s: %s\n", key, rec.Text)
	case assetstore.KindBinary:
		if assetGetOut == "" {
			printer.Info("%s: binary, %d bytes (use --out to extract)\n", key, len(rec.Data))
			return nil
		}
		if err := os.WriteFile(assetGetOut, rec.Data, 0o644); err != nil {
			return printer.Error("Failed to write output file", err.Error(), nil)
		}
		printer.Success("Wrote %d bytes to %s\n", len(rec.Data), assetGetOut)
	}
	return nil
}

func runAssetRm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return printer.Error("Failed to delete asset", err.Error(), nil)
	}
	printer.Success("Deleted %s\n", args[0])
	return nil
}

func runAssetLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := inventory.Collect(cmd.Context(), store)
	if err != nil {
		return printer.Error("Failed to list assets", err.Error(), nil)
	}

	switch assetLsOut {
	case "table":
		inventory.FormatTable(os.Stdout, items)
	case "jsonl":
		if err := inventory.FormatJSONL(os.Stdout, items); err != nil {
			return printer.Error("Failed to write listing", err.Error(), nil)
		}
	default:
		return printer.Error("Invalid output format",
			fmt.Sprintf("%q is not a listing format.", assetLsOut),
			[]string{"Use --output table or --output jsonl"})
	}
	return nil
}
