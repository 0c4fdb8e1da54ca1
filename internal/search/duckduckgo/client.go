// Package duckduckgo 通过 DuckDuckGo lite 页面搜索，不需要 API Key
package duckduckgo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/hn_digest/internal/search"
)

// DefaultEndpoint DuckDuckGo lite 页面地址
const DefaultEndpoint = "https://lite.duckduckgo.com/lite/"

const defaultMaxResults = 5

// Client DuckDuckGo lite 搜索客户端
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewClient 创建客户端，请求频率限制为每秒 1 次
func NewClient(endpoint string, hc *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		endpoint: endpoint,
		client:   hc,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

var _ search.Searcher = (*Client)(nil)

// Search 提交查询并解析 lite 页面中的结果
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.New("query is empty")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &search.Response{Results: parseResults(doc, maxResults)}, nil
}

// parseResults 结果链接与摘要按出现顺序一一对应
func parseResults(doc *goquery.Document, limit int) []search.Result {
	snippets := doc.Find("td.result-snippet").Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})

	var results []search.Result
	doc.Find("a.result-link").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		link := resolveLink(strings.TrimSpace(href))
		title := strings.TrimSpace(s.Text())
		if link == "" || title == "" {
			return true
		}

		r := search.Result{Title: title, URL: link}
		if i < len(snippets) {
			r.Content = snippets[i]
		}
		results = append(results, r)
		return len(results) < limit
	})
	return results
}

// resolveLink 还原 DuckDuckGo 跳转链接中的真实地址
func resolveLink(href string) string {
	if !strings.Contains(href, "duckduckgo.com/l/") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
