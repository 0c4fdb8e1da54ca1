// Package pipeline 串联 RSS 获取、逐篇摘要和报告输出
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/iWorld-y/hn_digest/internal/config"
	"github.com/iWorld-y/hn_digest/internal/logger"
	"github.com/iWorld-y/hn_digest/internal/model"
)

// PlaceholderPrefix placeholder 策略下失败条目的摘要前缀
const PlaceholderPrefix = "摘要生成失败："

// FeedFetcher 获取文章列表
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]model.Article, error)
}

// Summarizer 生成单篇文章概述
type Summarizer interface {
	Summarize(ctx context.Context, article model.Article) (string, error)
}

// Renderer 渲染报告
type Renderer interface {
	Render(items []model.SummarizedArticle, generatedAt time.Time) (string, error)
}

// Options 流程选项
type Options struct {
	Output      string
	OnError     string
	MaxArticles int
	// ProgressCallback 每处理完一篇文章回调一次
	ProgressCallback func(done, total int)
	// Now 为空时使用 time.Now
	Now func() time.Time
}

// OptionsFromConfig 从配置构造流程选项
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Output:      cfg.Report.Output,
		OnError:     cfg.Pipeline.OnError,
		MaxArticles: cfg.Pipeline.MaxArticles,
	}
}

// Result 一次运行的结果
type Result struct {
	Items       []model.SummarizedArticle
	HTML        string
	GeneratedAt time.Time
	Path        string
}

// Pipeline 顺序执行的摘要流程
type Pipeline struct {
	fetcher    FeedFetcher
	summarizer Summarizer
	renderer   Renderer
	opts       Options
	write      func(path, html string) error
}

// New 创建流程。write 负责把报告写入 opts.Output
func New(fetcher FeedFetcher, summarizer Summarizer, renderer Renderer, write func(path, html string) error, opts Options) *Pipeline {
	if opts.OnError == "" {
		opts.OnError = config.OnErrorAbort
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		fetcher:    fetcher,
		summarizer: summarizer,
		renderer:   renderer,
		opts:       opts,
		write:      write,
	}
}

// Run 执行一次完整流程。任何返回的错误都意味着报告文件未被写入
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	articles, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	logger.Log.Infof("获取到 %d 篇文章", len(articles))

	if p.opts.MaxArticles > 0 && len(articles) > p.opts.MaxArticles {
		articles = articles[:p.opts.MaxArticles]
		logger.Log.Infof("仅处理前 %d 篇", p.opts.MaxArticles)
	}

	items := make([]model.SummarizedArticle, 0, len(articles))
	for i, article := range articles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Log.Infof("[%d/%d] 正在处理: %s", i+1, len(articles), article.Title)

		summary, err := p.summarizer.Summarize(ctx, article)
		if err != nil {
			if p.opts.OnError != config.OnErrorPlaceholder {
				return nil, err
			}
			logger.Log.Errorf("[%d/%d] 摘要生成失败 [%s]: %v", i+1, len(articles), article.Title, err)
			summary = PlaceholderPrefix + err.Error()
		}

		items = append(items, model.SummarizedArticle{
			Title:   article.Title,
			Link:    article.URL,
			Summary: summary,
		})
		if p.opts.ProgressCallback != nil {
			p.opts.ProgressCallback(i+1, len(articles))
		}
	}

	generatedAt := p.opts.Now()
	html, err := p.renderer.Render(items, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	if err := p.write(p.opts.Output, html); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	logger.Log.Infof("报告已生成: %s", p.opts.Output)

	return &Result{Items: items, HTML: html, GeneratedAt: generatedAt, Path: p.opts.Output}, nil
}
