package persist

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pbaille/tastemap/internal/domain"
)

// Encode serializes the persisted state. Empty lists are written as [] so
// every field is always present.
func Encode(snap domain.Snapshot) ([]byte, error) {
	if snap.Tried == nil {
		snap.Tried = []domain.TriedRecord{}
	}
	if snap.WantToTry == nil {
		snap.WantToTry = []string{}
	}
	if snap.Memos == nil {
		snap.Memos = []domain.Memo{}
	}
	if snap.CustomEntities == nil {
		snap.CustomEntities = []domain.CustomEntity{}
	}
	if snap.Excluded == nil {
		snap.Excluded = []string{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a blob written by Encode
func Decode(data []byte) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, fmt.Errorf("decode snapshot: empty blob")
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
