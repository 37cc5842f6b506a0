package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"saham-assistant/internal/infrastructure/logger"
)

const maxNewsMarkdownLength = 4000

// NewsClient fetches a market news page and returns its content as markdown,
// suitable for inclusion in a briefing prompt.
type NewsClient interface {
	FetchMarkdown(ctx context.Context, pageURL string) (string, error)
}

type htmlNewsClient struct {
	httpClient HTTPClient
	converter  *md.Converter
	logger     logger.Logger
}

// NewHTMLNewsClient creates a news client that converts HTML pages to markdown.
func NewHTMLNewsClient(httpClient HTTPClient, log logger.Logger) NewsClient {
	return &htmlNewsClient{
		httpClient: httpClient,
		converter:  md.NewConverter("", true, nil),
		logger:     log,
	}
}

func (c *htmlNewsClient) FetchMarkdown(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	headers := map[string]string{
		"Accept": "text/html,application/xhtml+xml",
	}

	resp, err := c.httpClient.Get(ctx, pageURL, headers)
	if err != nil {
		return "", fmt.Errorf("failed to fetch news page: %w", err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("news page returned status %d", resp.StatusCode)
	}

	markdown, err := c.converter.ConvertString(string(resp.Body))
	if err != nil {
		return "", fmt.Errorf("failed to convert news page to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if len(markdown) > maxNewsMarkdownLength {
		markdown = markdown[:maxNewsMarkdownLength]
	}

	return markdown, nil
}
