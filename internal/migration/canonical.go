package migration

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeSnapshotRev hashes the encoded data records of a backup.
// Returns "sha256:<hex>" format.
func ComputeSnapshotRev(records [][]string) string {
	hash := sha256.Sum256(encodeRecords(records))
	return "sha256:" + hex.EncodeToString(hash[:])
}

func rowsRev(rows []Row) string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.fields()
	}
	return ComputeSnapshotRev(records)
}

// marshalCompact encodes v without HTML escaping or a trailing newline.
func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
