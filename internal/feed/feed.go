package feed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/iWorld-y/hn_digest/internal/model"
)

const userAgent = "hn_digest/1.0 (+https://hnrss.org)"

// Fetcher 拉取最新文章的 RSS 源
type Fetcher struct {
	url    string
	parser *gofeed.Parser
}

// NewFetcher 创建 RSS 拉取器，client 为 nil 时使用 http.DefaultClient
func NewFetcher(url string, client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &Fetcher{url: url, parser: parser}
}

// Fetch 请求一次 RSS 源，按源中顺序返回每个 item 的标题和链接
func (f *Fetcher) Fetch(ctx context.Context) ([]model.Article, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, model.Article{
			Title: item.Title,
			URL:   item.Link,
		})
	}
	return articles, nil
}
