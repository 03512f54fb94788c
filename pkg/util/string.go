package util

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// ContentHash derives the cache key for a rewrite request. The key covers
// the original content, title and topic so that the same source text under
// a different topic is rewritten independently.
func ContentHash(content, title, topic string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s_%s", content, title, topic)))
	return hex.EncodeToString(sum[:])
}

// TruncateRunes clamps s to at most n runes, appending an ellipsis when
// anything was cut.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

// TrimQuotes removes a single layer of surrounding quotes that chat models
// like to wrap short outputs in.
func TrimQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{"\"", "'", "«", "»"} {
		s = strings.TrimPrefix(s, q)
		s = strings.TrimSuffix(s, q)
	}
	return strings.TrimSpace(s)
}
