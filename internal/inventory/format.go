// Package inventory lists the durable asset store for operators, as a
// human table or as JSONL for piping into tools like jq.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/whxxx2005-coder/xianyi/pkg/assetstore"
)

// Item is one asset store entry as shown to operators. Size counts payload
// bytes for binary records and characters for string records.
type Item struct {
	Key  string                `json:"key"`
	Kind assetstore.RecordKind `json:"kind"`
	Size int                   `json:"size"`
}

// Collect reads the store into listing items, sorted by key.
func Collect(ctx context.Context, store *assetstore.Store) ([]Item, error) {
	keys, err := store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		rec, ok, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read asset %q: %w", key, err)
		}
		if !ok {
			continue
		}
		size := len(rec.Data)
		if rec.Kind == assetstore.KindString {
			size = len(rec.Text)
		}
		items = append(items, Item{Key: key, Kind: rec.Kind, Size: size})
	}
	return items, nil
}

// FormatTable writes items as a formatted table. Returns the number of
// items written.
func FormatTable(w io.Writer, items []Item) int {
	if len(items) == 0 {
		fmt.Fprintln(w, "No assets stored")
		return 0
	}

	fmt.Fprintf(w, "%-40s %-8s %s\n", "KEY", "KIND", "SIZE")
	for _, it := range items {
		fmt.Fprintf(w, "%-40s %-8s %s\n", it.Key, it.Kind, formatSize(it.Size))
	}

	noun := "asset"
	if len(items) != 1 {
		noun = "assets"
	}
	fmt.Fprintf(w, "\n%d %s stored\n", len(items), noun)
	return len(items)
}

// FormatJSONL writes items as line-delimited JSON, one item per line.
func FormatJSONL(w io.Writer, items []Item) error {
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("failed to serialize item: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

// formatSize renders a byte count compactly (1.2 KB, 3.4 MB).
func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
