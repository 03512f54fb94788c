package service

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML_ConvertsMarkdown(t *testing.T) {
	html, err := RenderHTML("## Overview\n\nMarkets rallied today.")
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>Overview</h2>")
	assert.Contains(t, html, "<p>Markets rallied today.</p>")
}

func TestRenderHTML_MarksReferralLinksSponsored(t *testing.T) {
	markdown := "Check [this course](https://hop.clickbank.net/?cc&tid=a1) and [the source](https://news.example.com/story)."

	html, err := RenderHTML(markdown)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	referral := doc.Find(`a[href*="hop.clickbank.net"]`)
	require.Equal(t, 1, referral.Length())
	rel, _ := referral.Attr("rel")
	assert.Equal(t, "noopener noreferrer sponsored", rel)
	target, _ := referral.Attr("target")
	assert.Equal(t, "_blank", target)

	plain := doc.Find(`a[href*="news.example.com"]`)
	require.Equal(t, 1, plain.Length())
	_, hasRel := plain.Attr("rel")
	assert.False(t, hasRel, "ordinary links keep their attributes untouched")
}
