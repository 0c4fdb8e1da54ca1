package factory

import (
	"fmt"
	"net/http"

	"github.com/iWorld-y/hn_digest/internal/config"
	"github.com/iWorld-y/hn_digest/internal/search"
	"github.com/iWorld-y/hn_digest/internal/search/duckduckgo"
	"github.com/iWorld-y/hn_digest/internal/search/searxng"
	"github.com/iWorld-y/hn_digest/internal/search/tavily"
)

// 支持的搜索服务
const (
	ProviderTavily     = "tavily"
	ProviderSearXNG    = "searxng"
	ProviderDuckDuckGo = "duckduckgo"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg config.SearchConfig, hc *http.Client) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		// 默认回退逻辑：有 tavily key 则使用 tavily，否则使用无需 key 的 duckduckgo
		if cfg.Tavily.APIKey != "" {
			provider = ProviderTavily
		} else {
			provider = ProviderDuckDuckGo
		}
	}

	switch provider {
	case ProviderTavily:
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		opts := []tavily.Option{}
		if hc != nil {
			opts = append(opts, tavily.WithHTTPClient(hc))
		}
		return tavily.NewClient(cfg.Tavily.APIKey, opts...), nil

	case ProviderSearXNG:
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	case ProviderDuckDuckGo:
		return duckduckgo.NewClient("", hc), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
