package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"
)

// keyHashLen is the truncated digest length used for activity and
// request keys.
const keyHashLen = 16

// ContentHash computes the sha256 hex digest of the RFC 8785 canonical
// JSON form of v. Two structurally equal values hash identically
// regardless of field order or whitespace.
func ContentHash(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal content: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize content: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// ContentHashBytes computes the sha256 hex digest of raw bytes.
func ContentHashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// requestKey derives the deterministic key shared by the activity and
// request IRIs for one retrieval: a truncated hash over the request URL
// and its parameters in sorted order.
func requestKey(requestURL string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(requestURL))
	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write([]byte(params[name]))
	}
	return hex.EncodeToString(h.Sum(nil))[:keyHashLen]
}
