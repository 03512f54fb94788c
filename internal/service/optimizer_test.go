package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdjustStrategy_RanksTopicsByScore(t *testing.T) {
	a1 := publishedArticle("a1", "https://blog.example.com/one")
	a1.Topic = "finance"
	a2 := publishedArticle("a2", "https://blog.example.com/two")
	a2.Topic = "technology"
	store := newFakeStore(a1, a2)

	analytics := &fakeAnalytics{samples: map[string]PerformanceSample{
		// finance: 100*0.1 + 50*2 = 110
		"a1": {Views: 100, Commissions: 50},
		// technology: 500*0.1 = 50
		"a2": {Views: 500, Commissions: 0},
	}}
	priorities := &fakePriorityStore{}

	svc := NewOptimizerService(store, priorities, analytics, zap.NewNop())
	require.NoError(t, svc.AdjustStrategy(context.Background()))

	require.Len(t, priorities.replaced, 1)
	ranking := priorities.replaced[0]
	require.Len(t, ranking, 2)
	assert.Equal(t, "finance", ranking[0].Topic)
	assert.Equal(t, 0, ranking[0].Rank)
	assert.InDelta(t, 110.0, ranking[0].Score, 0.001)
	assert.Equal(t, "technology", ranking[1].Topic)
	assert.Equal(t, 1, ranking[1].Rank)
}

func TestAdjustStrategy_AggregatesPerTopic(t *testing.T) {
	a1 := publishedArticle("a1", "https://blog.example.com/one")
	a1.Topic = "finance"
	a2 := publishedArticle("a2", "https://blog.example.com/two")
	a2.Topic = "finance"
	store := newFakeStore(a1, a2)

	analytics := &fakeAnalytics{samples: map[string]PerformanceSample{
		"a1": {Views: 100},
		"a2": {Views: 200},
	}}
	priorities := &fakePriorityStore{}

	svc := NewOptimizerService(store, priorities, analytics, zap.NewNop())
	require.NoError(t, svc.AdjustStrategy(context.Background()))

	require.Len(t, priorities.replaced, 1)
	ranking := priorities.replaced[0]
	require.Len(t, ranking, 1)
	assert.InDelta(t, 30.0, ranking[0].Score, 0.001)
}

func TestAdjustStrategy_NoPublishedArticlesKeepsPriorities(t *testing.T) {
	store := newFakeStore(collectedArticle("a1"))
	priorities := &fakePriorityStore{}

	svc := NewOptimizerService(store, priorities, &fakeAnalytics{}, zap.NewNop())
	require.NoError(t, svc.AdjustStrategy(context.Background()))

	assert.Empty(t, priorities.replaced, "an empty sample must not clobber the existing ranking")
}
