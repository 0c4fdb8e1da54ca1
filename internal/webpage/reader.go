package webpage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Page 网页正文
type Page struct {
	Title string
	Text  string
}

// Reader 抓取网页并提取正文
type Reader struct {
	client   *http.Client
	maxRunes int
}

// NewReader 创建网页阅读器，maxRunes <= 0 时不截断
func NewReader(client *http.Client, maxRunes int) *Reader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Reader{client: client, maxRunes: maxRunes}
}

// Read 抓取 URL 并返回 readability 提取的纯文本
func (r *Reader) Read(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch http %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return nil, fmt.Errorf("readability failed: %w", err)
	}

	return &Page{
		Title: article.Title,
		Text:  truncate(strings.TrimSpace(article.TextContent), r.maxRunes),
	}, nil
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "\n[TRUNCATED]"
}
