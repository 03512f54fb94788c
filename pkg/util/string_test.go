package util

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestContentHash_Deterministic(t *testing.T) {
	first := ContentHash("content", "title", "topic")
	second := ContentHash("content", "title", "topic")

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestContentHash_DistinguishesFields(t *testing.T) {
	base := ContentHash("content", "title", "topic")

	assert.NotEqual(t, base, ContentHash("content", "title", "other"))
	assert.NotEqual(t, base, ContentHash("content", "other", "topic"))
	assert.NotEqual(t, base, ContentHash("other", "title", "topic"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 10))

	long := "aaaaaaaaaaaaaaaaaaaa"
	truncated := TruncateRunes(long, 10)
	assert.Equal(t, 10, utf8.RuneCountInString(truncated))
	assert.Equal(t, "aaaaaaaaa…", truncated)

	// multi-byte runes count as one
	assert.Equal(t, "héllô", TruncateRunes("héllô", 5))
}

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "A punchy tweet", TrimQuotes(`"A punchy tweet"`))
	assert.Equal(t, "A punchy tweet", TrimQuotes("'A punchy tweet'"))
	assert.Equal(t, "A punchy tweet", TrimQuotes("« A punchy tweet »"))
	assert.Equal(t, "no quotes here", TrimQuotes("  no quotes here  "))
	assert.Equal(t, "", TrimQuotes(`""`))
}
