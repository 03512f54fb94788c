package service

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/models"
)

// PriorityStore persists the optimizer's topic ranking.
type PriorityStore interface {
	ReplacePriorities(ctx context.Context, priorities []models.TopicPriority) error
}

// OptimizerService periodically scores topics by the performance of their
// published articles and reorders collection priorities accordingly.
type OptimizerService struct {
	store      ContentStore
	priorities PriorityStore
	analytics  AnalyticsSource
	logger     *zap.Logger
}

func NewOptimizerService(store ContentStore, priorities PriorityStore, analytics AnalyticsSource, logger *zap.Logger) *OptimizerService {
	return &OptimizerService{
		store:      store,
		priorities: priorities,
		analytics:  analytics,
		logger:     logger,
	}
}

// AdjustStrategy recomputes the topic ranking from published articles.
// score = views*0.1 + commissions*2, summed per topic.
func (s *OptimizerService) AdjustStrategy(ctx context.Context) error {
	published, err := s.store.ArticlesByStatus(ctx, models.StatusPublished)
	if err != nil {
		return err
	}
	if len(published) == 0 {
		s.logger.Info("No published articles yet, keeping topic priorities")
		return nil
	}

	type aggregate struct {
		views       int
		commissions float64
		count       int
	}
	perTopic := make(map[string]*aggregate)

	for _, article := range published {
		sample, err := s.analytics.ArticleStats(ctx, article)
		if err != nil {
			s.logger.Warn("No analytics for article",
				zap.String("article_id", article.ArticleID),
				zap.Error(err))
			continue
		}
		agg := perTopic[article.Topic]
		if agg == nil {
			agg = &aggregate{}
			perTopic[article.Topic] = agg
		}
		agg.views += sample.Views
		agg.commissions += sample.Commissions
		agg.count++
	}

	type scoredTopic struct {
		topic string
		score float64
	}
	ranked := make([]scoredTopic, 0, len(perTopic))
	for topic, agg := range perTopic {
		ranked = append(ranked, scoredTopic{
			topic: topic,
			score: float64(agg.views)*0.1 + agg.commissions*2,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	priorities := make([]models.TopicPriority, len(ranked))
	for i, entry := range ranked {
		priorities[i] = models.TopicPriority{
			Topic: entry.topic,
			Score: entry.score,
			Rank:  i,
		}
		s.logger.Info("Topic performance",
			zap.String("topic", entry.topic),
			zap.Float64("score", entry.score),
			zap.Int("rank", i))
	}

	return s.priorities.ReplacePriorities(ctx, priorities)
}

// SimulatedAnalytics stands in for a real analytics feed (site analytics,
// marketplace commission reports); until one is wired up, figures are
// drawn at random so the reprioritization loop can be exercised
// end-to-end. The resulting ordering carries no real signal.
type SimulatedAnalytics struct {
	rand *rand.Rand
}

func NewSimulatedAnalytics() *SimulatedAnalytics {
	return &SimulatedAnalytics{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *SimulatedAnalytics) ArticleStats(_ context.Context, article models.Article) (PerformanceSample, error) {
	views := 50 + s.rand.Intn(4951)

	commissions := 0.0
	topic := strings.ToLower(article.Topic)
	if strings.Contains(topic, "health") || strings.Contains(topic, "finance") {
		commissions = (5 + s.rand.Float64()*145) * (float64(views) / 5000)
	}

	return PerformanceSample{Views: views, Commissions: commissions}, nil
}
