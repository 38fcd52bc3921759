package syncer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whxxx2005-coder/xianyi/pkg/assetstore"
)

func TestEntryEncodingIsReversible(t *testing.T) {
	tests := []struct {
		name string
		rec  assetstore.Record
	}{
		{"binary payload", assetstore.BinaryRecord([]byte{0x00, 0xFF, 0x7F, '"', '\\', '\n'})},
		{"empty binary payload", assetstore.BinaryRecord([]byte{})},
		{"plain url", assetstore.StringRecord("https://cdn.example/poster.jpg")},
		{"string that looks like base64", assetstore.StringRecord("aGVsbG8=")},
		{"string with quotes and unicode", assetstore.StringRecord(`探索者 said "你好"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := encodeEntry(tt.rec)
			require.NoError(t, err)
			got, err := decodeEntry(entry)
			require.NoError(t, err)
			assert.Equal(t, tt.rec.Kind, got.Kind)
			if tt.rec.Kind == assetstore.KindBinary {
				assert.Equal(t, []byte(tt.rec.Data), got.Data)
			} else {
				assert.Equal(t, tt.rec.Text, got.Text)
			}
		})
	}
}

func TestDecodeEntryRejectsBadInput(t *testing.T) {
	_, err := decodeEntry(Entry{Kind: "blob", Data: "x"})
	assert.Error(t, err)

	_, err = decodeEntry(Entry{Kind: assetstore.KindBinary, Data: "not!base64!!"})
	assert.Error(t, err)
}

func TestBundleWireFormat(t *testing.T) {
	ctx := context.Background()
	store, err := assetstore.Open(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "poster", assetstore.BinaryRecord([]byte("img"))))
	require.NoError(t, store.Put(ctx, "relic1", assetstore.StringRecord("https://example/r1.png")))

	bundle, err := PackageStore(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, BundleVersion, bundle.Version)
	assert.Len(t, bundle.Assets, 2)

	// The wire form must round-trip through JSON intact.
	payload, err := bundle.Marshal()
	require.NoError(t, err)
	parsed, err := UnmarshalBundle(payload)
	require.NoError(t, err)
	assert.Equal(t, bundle, parsed)
}

func TestUnpackRejectsUnknownVersion(t *testing.T) {
	store, err := assetstore.Open(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	defer store.Close()

	b := &Bundle{Version: 99, Assets: map[string]Entry{}}
	assert.Error(t, b.Unpack(context.Background(), store))
}
