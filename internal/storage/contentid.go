package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ContentID computes a deterministic identifier from a fixed subset of an
// item's fields: the qualifying field names are sorted, their values
// pipe-joined, hashed and truncated, so repeated runs over identical
// qualifying fields always produce the same ID. Fields outside names never
// influence the result.
func ContentID(fields map[string]string, names []string, prefix string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	values := make([]string, len(sorted))
	for i, name := range sorted {
		values[i] = fields[name]
	}

	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return prefix + hex.EncodeToString(sum[:])[:16]
}
