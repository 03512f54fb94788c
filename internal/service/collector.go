package service

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/config"
	"github.com/mlefebvre/plume/internal/models"
)

const googleNewsBase = "https://news.google.com"

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Safari/605.1.15",
}

// NewsItem is one scraped headline before it becomes an article row.
type NewsItem struct {
	Title   string
	URL     string
	Topic   string
	Snippet string
}

// CollectorService is the ingestion stage: it scrapes the news source per
// topic, gates every URL through the seen cache, and creates article rows
// with status collected.
type CollectorService struct {
	config      *config.CollectorConfig
	store       ContentStore
	seen        SeenCache
	prioritizer TopicPrioritizer
	logger      *zap.Logger
	client      *http.Client
	rand        *rand.Rand
}

func NewCollectorService(cfg *config.CollectorConfig, store ContentStore, seen SeenCache, prioritizer TopicPrioritizer, logger *zap.Logger) *CollectorService {
	return &CollectorService{
		config:      cfg,
		store:       store,
		seen:        seen,
		prioritizer: prioritizer,
		logger:      logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *CollectorService) Name() string { return "collect" }

// Run scrapes each topic in priority order. A topic failing never aborts
// the stage; a pause with jitter separates successive topics so traffic
// looks organic.
func (s *CollectorService) Run(ctx context.Context) error {
	topics := s.orderedTopics(ctx)

	for i, topic := range topics {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return err
			}
		}

		items, err := s.scrapeTopic(ctx, topic)
		if err != nil {
			s.logger.Error("Failed to scrape topic",
				zap.String("topic", topic),
				zap.Error(err))
			continue
		}

		stored := 0
		for _, item := range items {
			created, err := s.ingest(ctx, item)
			if err != nil {
				s.logger.Error("Failed to ingest news item",
					zap.String("url", item.URL),
					zap.Error(err))
				continue
			}
			if created {
				stored++
			}
		}

		s.logger.Info("Topic collected",
			zap.String("topic", topic),
			zap.Int("scraped", len(items)),
			zap.Int("new", stored))
	}

	return nil
}

// orderedTopics puts the optimizer's best performers first and keeps the
// rest of the configured list behind them for diversity.
func (s *CollectorService) orderedTopics(ctx context.Context) []string {
	configured := s.config.Topics
	if s.prioritizer == nil {
		return configured
	}

	ranked, err := s.prioritizer.OrderedTopics(ctx)
	if err != nil {
		s.logger.Warn("Failed to load topic priorities, using configured order", zap.Error(err))
		return configured
	}

	inConfig := make(map[string]bool, len(configured))
	for _, t := range configured {
		inConfig[t] = true
	}

	ordered := make([]string, 0, len(configured))
	seen := make(map[string]bool, len(configured))
	for _, t := range ranked {
		if inConfig[t] && !seen[t] {
			ordered = append(ordered, t)
			seen[t] = true
		}
	}
	for _, t := range configured {
		if !seen[t] {
			ordered = append(ordered, t)
			seen[t] = true
		}
	}
	return ordered
}

// ingest runs one headline through the seen-URL gate and creates the
// article row. Returns true when the item was new.
func (s *CollectorService) ingest(ctx context.Context, item NewsItem) (bool, error) {
	known, err := s.seen.Has(ctx, item.URL)
	if err != nil {
		return false, err
	}
	if known {
		return false, nil
	}

	if err := s.seen.Add(ctx, item.URL, item.Title); err != nil {
		return false, err
	}

	article := &models.Article{
		URL:        item.URL,
		Title:      item.Title,
		Topic:      item.Topic,
		Status:     models.StatusCollected,
		ContentRaw: item.Snippet,
	}
	if err := s.store.CreateArticle(ctx, article); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CollectorService) scrapeTopic(ctx context.Context, topic string) ([]NewsItem, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&hl=%s&gl=%s",
		googleNewsBase, url.QueryEscape(topic), s.config.Language, s.config.Region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[s.rand.Intn(len(userAgents))])

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news source returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news page: %w", err)
	}

	return parseNewsDocument(doc, topic, s.config.MaxPerTopic), nil
}

// parseNewsDocument extracts headlines from a Google News results page.
func parseNewsDocument(doc *goquery.Document, topic string, max int) []NewsItem {
	var items []NewsItem

	doc.Find("div.NiLAwe").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(items) >= max {
			return false
		}

		title := strings.TrimSpace(card.Find("h3.ipQwMb").First().Text())
		href, ok := card.Find("a").First().Attr("href")
		if title == "" || !ok || href == "" {
			return true
		}

		if strings.HasPrefix(href, "./") {
			href = googleNewsBase + href[1:]
		}

		items = append(items, NewsItem{
			Title:   title,
			URL:     href,
			Topic:   topic,
			Snippet: strings.TrimSpace(card.Find("span.xBbh9").First().Text()),
		})
		return true
	})

	return items
}

// pause sleeps a random interval between topic scrapes, aborting early on
// cancellation.
func (s *CollectorService) pause(ctx context.Context) error {
	min := s.config.MinPauseSecs
	span := s.config.MaxPauseSecs - min
	if span <= 0 {
		span = 1
	}
	delay := time.Duration(min+s.rand.Intn(span)) * time.Second

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
