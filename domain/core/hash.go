package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeSampleHash fingerprints a row sample independent of map iteration order
func ComputeSampleHash(rows []map[string]interface{}) Hash {
	var data strings.Builder
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			data.WriteString(key)
			data.WriteByte('=')
			data.WriteString(fmt.Sprintf("%v", row[key]))
			data.WriteByte(';')
		}
		data.WriteByte('\n')
	}
	return NewHash([]byte(data.String()))
}
