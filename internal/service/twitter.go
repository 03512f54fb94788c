package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/config"
)

const tweetEndpoint = "https://api.twitter.com/2/tweets"

// TwitterClient implements SocialTarget against the X API v2.
type TwitterClient struct {
	config *config.TwitterConfig
	logger *zap.Logger
	client *http.Client
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func NewTwitterClient(cfg *config.TwitterConfig, logger *zap.Logger) *TwitterClient {
	return &TwitterClient{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *TwitterClient) PostMessage(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tweetEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create tweet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("twitter returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode tweet response: %w", err)
	}

	c.logger.Info("Tweet posted", zap.String("tweet_id", parsed.Data.ID))
	return parsed.Data.ID, nil
}
