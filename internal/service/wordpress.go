package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/config"
)

// WordPressClient implements PublishTarget against the WordPress REST API
// with application-password Basic auth.
type WordPressClient struct {
	config *config.WordPressConfig
	logger *zap.Logger
	client *http.Client
}

type wpPostRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
}

type wpPostResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

type wpMediaResponse struct {
	ID int `json:"id"`
}

func NewWordPressClient(cfg *config.WordPressConfig, logger *zap.Logger) *WordPressClient {
	return &WordPressClient{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *WordPressClient) authHeader() string {
	credentials := fmt.Sprintf("%s:%s", c.config.Username, c.config.AppPassword)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func (c *WordPressClient) UploadMedia(ctx context.Context, data []byte, filename string) (int, error) {
	url := c.config.URL + "/wp-json/wp/v2/media"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to create media request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to upload media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("wordpress media upload returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed wpMediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode media response: %w", err)
	}
	return parsed.ID, nil
}

func (c *WordPressClient) CreatePost(ctx context.Context, title, htmlBody string, featuredMediaID int) (int, string, error) {
	url := c.config.URL + "/wp-json/wp/v2/posts"

	body, err := json.Marshal(wpPostRequest{
		Title:         title,
		Content:       htmlBody,
		Status:        "publish",
		FeaturedMedia: featuredMediaID,
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal post request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create post request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return 0, "", fmt.Errorf("wordpress post create returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed wpPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, "", fmt.Errorf("failed to decode post response: %w", err)
	}
	return parsed.ID, parsed.Link, nil
}

// RenderHTML converts the monetized markdown to HTML and marks every
// referral anchor as sponsored so published posts stay compliant.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered html: %w", err)
	}

	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		if strings.Contains(href, "hop.clickbank.net") {
			anchor.SetAttr("target", "_blank")
			anchor.SetAttr("rel", "noopener noreferrer sponsored")
		}
	})

	html, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize html: %w", err)
	}
	return html, nil
}
