package assetstore

import (
	"fmt"
	"strings"
)

// Asset key pattern helpers
//
// Keys are the join point between the durable store, the bundled fallback
// file layout, and the sync bundle. They must stay stable across sessions
// and devices, so every key form is built here and nowhere else.

// PosterKey is the fixed key of the exhibition entry poster image.
const PosterKey = "poster"

// audioKeyPrefix marks narration audio keys.
const audioKeyPrefix = "audio_"

// ImageKey returns the asset key for a relic's card image.
// Pattern: {relicID}
func ImageKey(relicID string) string {
	return relicID
}

// AudioKey returns the asset key for one relic's narration audio in one
// guide persona's voice.
// Pattern: audio_{relicID}_{persona}
func AudioKey(relicID, persona string) string {
	return fmt.Sprintf("%s%s_%s", audioKeyPrefix, relicID, persona)
}

// IsAudioKey reports whether key names a narration audio asset.
func IsAudioKey(key string) bool {
	return strings.HasPrefix(key, audioKeyPrefix)
}

// ParseAudioKey splits a narration audio key back into relic id and
// persona. Returns ok=false for keys that are not audio keys or are
// malformed. Relic ids never contain underscores; personas may not either,
// so the split is unambiguous.
func ParseAudioKey(key string) (relicID, persona string, ok bool) {
	rest, found := strings.CutPrefix(key, audioKeyPrefix)
	if !found {
		return "", "", false
	}
	relicID, persona, found = strings.Cut(rest, "_")
	if !found || relicID == "" || persona == "" {
		return "", "", false
	}
	return relicID, persona, true
}
