package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/hn_digest/internal/agent"
	"github.com/iWorld-y/hn_digest/internal/config"
	"github.com/iWorld-y/hn_digest/internal/feed"
	"github.com/iWorld-y/hn_digest/internal/logger"
	"github.com/iWorld-y/hn_digest/internal/pdf"
	"github.com/iWorld-y/hn_digest/internal/pipeline"
	"github.com/iWorld-y/hn_digest/internal/report"
	"github.com/iWorld-y/hn_digest/internal/search/factory"
	"github.com/iWorld-y/hn_digest/internal/webpage"
)

// NewRunCmd 创建 run 子命令
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "执行一次摘要流程并生成 HTML 报告",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("配置错误: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			res, err := p.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 %d 篇摘要: %s\n", len(res.Items), res.Path)
			return nil
		},
	}
}

// loadConfig 读取 --config 指定的配置并初始化日志
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("无法初始化日志: %w", err)
	}
	return cfg, nil
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	hc := &http.Client{Timeout: cfg.HTTP.Timeout}

	searcher, err := factory.NewSearcher(cfg.Search, hc)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	chatModel, err := agent.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	// PDF 下载的时长由 pdf.timeout 单独控制
	summarizer, err := agent.New(ctx, chatModel, agent.Deps{
		Extractor: pdf.NewExtractor(&http.Client{}, cfg.PDF.Timeout),
		Searcher:  searcher,
		Reader:    webpage.NewReader(hc, cfg.Webpage.MaxRunes),
	}, cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := report.NewRenderer(cfg.Report.SummaryFormat)
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("启动 Hacker News 摘要流程, 源: %s", cfg.Feed.URL)
	return pipeline.New(
		feed.NewFetcher(cfg.Feed.URL, hc),
		summarizer,
		renderer,
		report.WriteFile,
		pipeline.OptionsFromConfig(cfg),
	), nil
}
