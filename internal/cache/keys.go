package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// maxNestedChars bounds how much of a serialized sub-object participates in
// the fingerprint. Enough to discriminate meaningfully different inputs
// without unbounded key material.
const maxNestedChars = 160

// Fingerprint computes a deterministic cache key from generation inputs.
// Fields are serialized in sorted key order so logically identical inputs
// always hash the same regardless of construction order. Credentials must
// never be passed in; the hasher has no way to tell a secret from data.
func Fingerprint(namespace string, fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(canonicalValue(fields[k]))
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return namespace + ":" + hex.EncodeToString(sum[:])
}

func canonicalValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return fmt.Sprintf("%g", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case fmt.Stringer:
		return val.String()
	default:
		// Nested structures are serialized and truncated to keep the
		// canonical string bounded.
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		s := string(data)
		if len(s) > maxNestedChars {
			s = s[:maxNestedChars]
		}
		return s
	}
}
