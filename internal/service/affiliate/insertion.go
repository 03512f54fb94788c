package affiliate

import (
	"math/rand"
	"strings"
	"time"
)

// paragraphSeparator is the blank-line separator the article body is split
// and rejoined on.
const paragraphSeparator = "\n\n"

var insertionTemplates = []string{
	"To dig deeper into this topic, {product_name} is an excellent resource. [Learn more]",
	"If you want to go further, I highly recommend {product_name}. [Discover]",
	"One tool that could help you here is {product_name}. [See details]",
}

// Inserter places referral passages into article text. The only
// nondeterminism is the template pick, so tests can pin a seed.
type Inserter struct {
	rand *rand.Rand
}

func NewInserter() *Inserter {
	return NewSeededInserter(time.Now().UnixNano())
}

func NewSeededInserter(seed int64) *Inserter {
	return &Inserter{rand: rand.New(rand.NewSource(seed))}
}

// InsertLinks inserts one formatted passage per selected product. The i-th
// product goes to index pc/2 + i*(pc/4) where pc is the paragraph count
// BEFORE any insertion; later indices are never re-derived from the grown
// document, which is what keeps the output ordering reproducible. Indices
// that fall outside the current document skip the product silently.
// Existing paragraphs are never modified.
func (ins *Inserter) InsertLinks(content string, products []Product, articleID string) string {
	if len(products) == 0 {
		return content
	}

	paragraphs := strings.Split(content, paragraphSeparator)
	originalCount := len(paragraphs)

	for i, product := range products {
		index := originalCount/2 + i*(originalCount/4)
		if index >= len(paragraphs) {
			continue
		}

		passage := ins.buildPassage(product, articleID)
		paragraphs = append(paragraphs[:index],
			append([]string{passage}, paragraphs[index:]...)...)
	}

	return strings.Join(paragraphs, paragraphSeparator)
}

// buildPassage picks a template, substitutes the product name, and turns
// the template's first [label] into a markdown link pointing at the
// product's referral URL with the article identifier filled in.
func (ins *Inserter) buildPassage(product Product, articleID string) string {
	template := insertionTemplates[ins.rand.Intn(len(insertionTemplates))]
	passage := strings.ReplaceAll(template, "{product_name}", product.Name)
	hoplink := strings.ReplaceAll(product.ReferralLink, "{article_id}", articleID)

	open := strings.Index(passage, "[")
	if open == -1 {
		return passage
	}
	close := strings.Index(passage[open:], "]")
	if close == -1 {
		return passage
	}
	close += open

	label := passage[open+1 : close]
	return passage[:open] + "[" + label + "](" + hoplink + ")" + passage[close+1:]
}
