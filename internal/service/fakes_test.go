package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/internal/service/affiliate"
)

// In-memory collaborators for exercising the pipeline stages without a
// database or network.

type fakeStore struct {
	mu       sync.Mutex
	articles map[string]*models.Article
}

func newFakeStore(articles ...models.Article) *fakeStore {
	s := &fakeStore{articles: make(map[string]*models.Article)}
	for i := range articles {
		a := articles[i]
		s.articles[a.ArticleID] = &a
	}
	return s
}

func (s *fakeStore) get(articleID string) models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.articles[articleID]
}

func (s *fakeStore) ArticlesByStatus(_ context.Context, status models.ArticleStatus) ([]models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Article
	for _, a := range s.articles {
		if a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) ArticlesAwaitingPromotion(_ context.Context) ([]models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Article
	for _, a := range s.articles {
		if a.Status == models.StatusPublished && a.PromotionStatus == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateArticle(_ context.Context, article *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if article.ArticleID == "" {
		article.ArticleID = fmt.Sprintf("fake-%d", len(s.articles)+1)
	}
	for _, existing := range s.articles {
		if existing.URL == article.URL {
			return nil
		}
	}
	copied := *article
	s.articles[article.ArticleID] = &copied
	return nil
}

func (s *fakeStore) transition(articleID string, next models.ArticleStatus, mutate func(*models.Article)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[articleID]
	if !ok {
		return fmt.Errorf("article %s not found", articleID)
	}
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	a.Status = next
	mutate(a)
	return nil
}

func (s *fakeStore) MarkRewritten(_ context.Context, articleID, content string) error {
	return s.transition(articleID, models.StatusRewritten, func(a *models.Article) {
		a.ContentRewritten = content
	})
}

func (s *fakeStore) MarkRewriteFailed(_ context.Context, articleID, reason string) error {
	return s.transition(articleID, models.StatusErrorRewrite, func(a *models.Article) {
		a.LastError = reason
	})
}

func (s *fakeStore) MarkMonetized(_ context.Context, articleID, content string, products []string) error {
	return s.transition(articleID, models.StatusMonetized, func(a *models.Article) {
		a.ContentMonetized = content
		a.ProductsLinked = products
	})
}

func (s *fakeStore) MarkPublished(_ context.Context, articleID string, postID int, permalink string) error {
	return s.transition(articleID, models.StatusPublished, func(a *models.Article) {
		a.WPPostID = postID
		a.WPPermalink = permalink
	})
}

func (s *fakeStore) MarkPromoted(_ context.Context, articleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[articleID]
	if !ok {
		return fmt.Errorf("article %s not found", articleID)
	}
	done := models.PromotionDone
	a.PromotionStatus = &done
	return nil
}

type fakeSeenCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeSeenCache(urls ...string) *fakeSeenCache {
	c := &fakeSeenCache{seen: make(map[string]bool)}
	for _, u := range urls {
		c.seen[u] = true
	}
	return c
}

func (c *fakeSeenCache) Has(_ context.Context, url string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[url], nil
}

func (c *fakeSeenCache) Add(_ context.Context, url, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[url] = true
	return nil
}

type fakeRewriteStore struct {
	entries map[string]models.RewriteEntry
	puts    int
}

func newFakeRewriteStore() *fakeRewriteStore {
	return &fakeRewriteStore{entries: make(map[string]models.RewriteEntry)}
}

func (c *fakeRewriteStore) Get(_ context.Context, hash string) (*models.RewriteEntry, error) {
	if entry, ok := c.entries[hash]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (c *fakeRewriteStore) Put(_ context.Context, entry models.RewriteEntry) error {
	c.puts++
	c.entries[entry.ContentHash] = entry
	return nil
}

type fakePublicationStore struct {
	entries map[string]models.PublicationEntry
}

func newFakePublicationStore() *fakePublicationStore {
	return &fakePublicationStore{entries: make(map[string]models.PublicationEntry)}
}

func (c *fakePublicationStore) Get(_ context.Context, articleID string) (*models.PublicationEntry, error) {
	if entry, ok := c.entries[articleID]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (c *fakePublicationStore) Put(_ context.Context, entry models.PublicationEntry) error {
	c.entries[entry.ArticleID] = entry
	return nil
}

// fakeGenerator returns a scripted result per model name. Models absent
// from the script fail.
type fakeGenerator struct {
	responses map[string]string
	calls     []string
}

func (g *fakeGenerator) GenerateText(_ context.Context, model, _, _ string) (string, error) {
	g.calls = append(g.calls, model)
	if text, ok := g.responses[model]; ok {
		return text, nil
	}
	return "", fmt.Errorf("model %s unavailable", model)
}

type fakeImageGenerator struct {
	data  map[string][]byte
	calls []string
}

func (g *fakeImageGenerator) GenerateImage(_ context.Context, model, _ string) ([]byte, error) {
	g.calls = append(g.calls, model)
	if data, ok := g.data[model]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("model %s unavailable", model)
}

type fakePublishTarget struct {
	mediaUploads int
	posts        []string
	postErr      error
}

func (t *fakePublishTarget) UploadMedia(_ context.Context, _ []byte, _ string) (int, error) {
	t.mediaUploads++
	return 100 + t.mediaUploads, nil
}

func (t *fakePublishTarget) CreatePost(_ context.Context, title, _ string, _ int) (int, string, error) {
	if t.postErr != nil {
		return 0, "", t.postErr
	}
	t.posts = append(t.posts, title)
	return 42, "https://blog.example.com/" + fmt.Sprint(len(t.posts)), nil
}

type fakeSocial struct {
	messages []string
	err      error
}

func (s *fakeSocial) PostMessage(_ context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.messages = append(s.messages, text)
	return fmt.Sprintf("tweet-%d", len(s.messages)), nil
}

type fakeCatalog struct {
	products   map[string][]affiliate.Product
	categories []string
	err        error
}

func (c *fakeCatalog) ListProducts(_ context.Context, category string) ([]affiliate.Product, error) {
	c.categories = append(c.categories, category)
	if c.err != nil {
		return nil, c.err
	}
	return c.products[category], nil
}

type fakeAnalytics struct {
	samples map[string]PerformanceSample
}

func (a *fakeAnalytics) ArticleStats(_ context.Context, article models.Article) (PerformanceSample, error) {
	return a.samples[article.ArticleID], nil
}

type fakePriorityStore struct {
	replaced [][]models.TopicPriority
}

func (p *fakePriorityStore) ReplacePriorities(_ context.Context, priorities []models.TopicPriority) error {
	p.replaced = append(p.replaced, priorities)
	return nil
}
