package assetstore

import (
	"errors"
	"fmt"
)

// Store failure taxonomy. Callers are expected to branch with errors.Is:
// admin surfaces turn these into visible alerts, visitor-facing resolution
// degrades to an unavailable placeholder instead of propagating.
var (
	// ErrStorageUnavailable indicates the underlying database could not be
	// opened at all (missing directory, exhausted quota, unsupported path).
	ErrStorageUnavailable = errors.New("asset storage unavailable")

	// ErrWriteFailed indicates a Put or Delete failed after the store was
	// successfully opened.
	ErrWriteFailed = errors.New("asset write failed")

	// ErrReadFailed indicates a Get or key enumeration failed. Absence of a
	// record is not a read failure.
	ErrReadFailed = errors.New("asset read failed")
)

// RecordKind tags the payload representation of a stored record.
type RecordKind string

const (
	// KindBinary marks raw binary content (image or audio bytes).
	KindBinary RecordKind = "binary"

	// KindString marks a plain string payload (typically a remote URL).
	KindString RecordKind = "string"
)

// Validate checks that the RecordKind is a known tag.
func (k RecordKind) Validate() error {
	switch k {
	case KindBinary, KindString:
		return nil
	default:
		return fmt.Errorf("unknown record kind: %q", k)
	}
}

// Record is the stored value for one asset key: binary bytes or a plain
// string, never both. Construct with BinaryRecord or StringRecord so the
// tag and payload cannot disagree.
type Record struct {
	Kind RecordKind
	Data []byte // payload when Kind == KindBinary
	Text string // payload when Kind == KindString
}

// BinaryRecord builds a record holding raw binary content.
func BinaryRecord(data []byte) Record {
	return Record{Kind: KindBinary, Data: data}
}

// StringRecord builds a record holding a plain string payload.
func StringRecord(text string) Record {
	return Record{Kind: KindString, Text: text}
}

// Validate checks the record tag and that the payload matches it.
func (r Record) Validate() error {
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if r.Kind == KindBinary && r.Text != "" {
		return fmt.Errorf("binary record must not carry a string payload")
	}
	if r.Kind == KindString && r.Data != nil {
		return fmt.Errorf("string record must not carry a binary payload")
	}
	return nil
}
