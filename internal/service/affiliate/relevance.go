// Package affiliate holds the monetization core: keyword relevance scoring
// of candidate products and deterministic placement of referral passages
// into article text.
package affiliate

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Product is an affiliate candidate as the engines see it. ReferralLink is
// a template carrying an {article_id} substitution slot. Gravity is the
// marketplace's externally supplied popularity signal and only orders the
// catalog; relevance against a concrete article is scored here.
type Product struct {
	Name         string
	ReferralLink string
	Keywords     []string
	Gravity      float64
}

// maxSelected caps how many products get inserted into one article.
const maxSelected = 2

// minTokenLen: tokens this short carry no topical signal.
const minTokenLen = 4

var nonWordExpr = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

var stopwords = map[string]struct{}{
	// French function words, for articles scraped from French-language feeds
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "de": {},
	"et": {}, "en": {}, "pour": {}, "que": {},
	// common English fillers long enough to survive the length filter
	"that": {}, "this": {}, "with": {}, "from": {}, "have": {},
	"been": {}, "will": {}, "your": {}, "they": {}, "their": {},
	"about": {}, "which": {}, "when": {}, "what": {}, "were": {},
	"more": {}, "than": {}, "into": {}, "also": {}, "over": {},
}

// Keywords normalizes text into a deduplicated keyword set: lowercase,
// non-word characters stripped, tokens shorter than four runes and
// stopwords discarded.
func Keywords(text string) map[string]struct{} {
	cleaned := nonWordExpr.ReplaceAllString(strings.ToLower(text), "")

	set := make(map[string]struct{})
	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) < minTokenLen {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// SelectRelevant scores each candidate product by the size of the
// intersection between the article's keyword set and the product's, drops
// zero scores, and returns at most the top two by score descending. Ties
// keep catalog order (the sort is stable). An empty result is a valid
// outcome: the monetization stage proceeds with zero links.
func SelectRelevant(content, title string, products []Product) []Product {
	if len(products) == 0 {
		return nil
	}

	keywords := Keywords(content + " " + title)

	type scored struct {
		product Product
		score   int
	}

	var ranked []scored
	for _, product := range products {
		score := 0
		counted := make(map[string]struct{}, len(product.Keywords))
		for _, kw := range product.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := counted[kw]; dup {
				continue
			}
			counted[kw] = struct{}{}
			if _, ok := keywords[kw]; ok {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{product: product, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > maxSelected {
		ranked = ranked[:maxSelected]
	}

	selected := make([]Product, len(ranked))
	for i, entry := range ranked {
		selected[i] = entry.product
	}
	return selected
}
