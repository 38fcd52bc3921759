// Package syncer moves a device's complete asset set between devices that
// share a sync code. A push packages every durable record into one
// versioned JSON bundle and stores it under the code; a pull fetches the
// bundle and writes every entry back into the local store. Transfers are
// full-snapshot: the bundle always reflects the entire store of the device
// that pushed last.
package syncer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/whxxx2005-coder/xianyi/pkg/assetstore"
)

// BundleVersion is the wire format version of pushed bundles. A pull
// rejects bundles with an unknown version rather than guessing at their
// layout.
const BundleVersion = 1

// Bundle is the full-snapshot transfer unit: every asset record of the
// pushing device, keyed exactly as in its durable store.
type Bundle struct {
	Version int              `json:"version"`
	Assets  map[string]Entry `json:"assets"`
}

// Entry is one asset record in transit. The kind tag makes the entry
// self-describing so a pull restores exactly the record that was pushed:
// binary payloads travel base64-encoded, string payloads travel verbatim.
type Entry struct {
	Kind assetstore.RecordKind `json:"kind"`
	Data string                `json:"data"`
}

// encodeEntry converts a store record to its wire form.
func encodeEntry(rec assetstore.Record) (Entry, error) {
	if err := rec.Validate(); err != nil {
		return Entry{}, err
	}
	switch rec.Kind {
	case assetstore.KindBinary:
		return Entry{Kind: assetstore.KindBinary, Data: base64.StdEncoding.EncodeToString(rec.Data)}, nil
	case assetstore.KindString:
		return Entry{Kind: assetstore.KindString, Data: rec.Text}, nil
	default:
		return Entry{}, fmt.Errorf("unknown record kind %q", rec.Kind)
	}
}

// decodeEntry converts a wire entry back to a store record.
func decodeEntry(e Entry) (assetstore.Record, error) {
	switch e.Kind {
	case assetstore.KindBinary:
		data, err := base64.StdEncoding.DecodeString(e.Data)
		if err != nil {
			return assetstore.Record{}, fmt.Errorf("invalid binary payload: %w", err)
		}
		return assetstore.BinaryRecord(data), nil
	case assetstore.KindString:
		return assetstore.StringRecord(e.Data), nil
	default:
		return assetstore.Record{}, fmt.Errorf("unknown record kind %q", e.Kind)
	}
}

// PackageStore reads every record out of store and assembles the bundle.
func PackageStore(ctx context.Context, store *assetstore.Store) (*Bundle, error) {
	keys, err := store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	b := &Bundle{Version: BundleVersion, Assets: make(map[string]Entry, len(keys))}
	for _, key := range keys {
		rec, ok, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read asset %q: %w", key, err)
		}
		if !ok {
			// Deleted between list and read; a snapshot simply skips it.
			continue
		}
		entry, err := encodeEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to package asset %q: %w", key, err)
		}
		b.Assets[key] = entry
	}
	return b, nil
}

// Unpack writes every bundle entry into store. Existing records under the
// same keys are overwritten; local keys absent from the bundle are left
// untouched.
func (b *Bundle) Unpack(ctx context.Context, store *assetstore.Store) error {
	if b.Version != BundleVersion {
		return fmt.Errorf("unsupported bundle version %d", b.Version)
	}
	for key, entry := range b.Assets {
		rec, err := decodeEntry(entry)
		if err != nil {
			return fmt.Errorf("failed to unpack asset %q: %w", key, err)
		}
		if err := store.Put(ctx, key, rec); err != nil {
			return fmt.Errorf("failed to store asset %q: %w", key, err)
		}
	}
	return nil
}

// Marshal serialises the bundle to its wire JSON.
func (b *Bundle) Marshal() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize bundle: %w", err)
	}
	return data, nil
}

// UnmarshalBundle parses wire JSON into a bundle.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return &b, nil
}
