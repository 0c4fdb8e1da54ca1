package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/hn_digest/internal/config"
	"github.com/iWorld-y/hn_digest/internal/logger"
	dm "github.com/iWorld-y/hn_digest/internal/model"
	"github.com/iWorld-y/hn_digest/internal/search"
)

// Summarizer 为单篇文章生成中文概述
type Summarizer interface {
	Summarize(ctx context.Context, article dm.Article) (string, error)
}

// generator 抽象代理的单次运行，*react.Agent 满足该接口
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...agent.AgentOption) (*schema.Message, error)
}

// Deps 代理可调用的工具依赖
type Deps struct {
	Extractor DocumentExtractor
	Searcher  search.Searcher
	Reader    WebpageReader
}

// Agent 基于 ReAct 流程的摘要代理
type Agent struct {
	gen        generator
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
}

var _ Summarizer = (*Agent)(nil)

// NewChatModel 创建 OpenAI 兼容协议的对话模型
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.ToolCallingChatModel, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return chatModel, nil
}

// Tools 返回代理的工具集：PDF 解析工具加上基础的搜索和网页读取工具
func Tools(deps Deps) []tool.BaseTool {
	var tools []tool.BaseTool
	if deps.Extractor != nil {
		tools = append(tools, NewPDFParserTool(deps.Extractor))
	}
	if deps.Searcher != nil {
		tools = append(tools, NewWebSearchTool(deps.Searcher))
	}
	if deps.Reader != nil {
		tools = append(tools, NewVisitWebpageTool(deps.Reader))
	}
	return tools
}

// New 创建摘要代理
func New(ctx context.Context, chatModel model.ToolCallingChatModel, deps Deps, cfg *config.Config) (*Agent, error) {
	rAgent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: chatModel,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: Tools(deps)},
		MaxStep:          cfg.Agent.MaxStep,
	})
	if err != nil {
		return nil, fmt.Errorf("创建代理失败: %w", err)
	}
	return newAgent(rAgent, cfg), nil
}

func newAgent(gen generator, cfg *config.Config) *Agent {
	// Limit 设置为 RPM/60，Burst 设置为 QPS
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)
	logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", limit, cfg.Concurrency.QPS)

	return &Agent{
		gen:        gen,
		limiter:    limiter,
		timeout:    cfg.Agent.Timeout,
		maxRetries: cfg.Agent.MaxRetries,
		baseDelay:  cfg.Agent.RetryBaseDelay,
	}
}

// Summarize 运行一次代理，返回文章概述
func (a *Agent) Summarize(ctx context.Context, article dm.Article) (string, error) {
	prompt := BuildPrompt(article)

	var lastErr error
	for i := 0; i <= a.maxRetries; i++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("limiter wait error: %w", err)
		}

		summary, err := a.run(ctx, prompt)
		if err == nil {
			if n := utf8.RuneCountInString(summary); n < MinSummaryRunes || n > MaxSummaryRunes {
				logger.Log.Warnf("概述长度 %d 超出期望范围 [%s]", n, article.Title)
			}
			return summary, nil
		}

		lastErr = err
		if !isRateLimited(err) || i == a.maxRetries {
			break
		}

		delay := a.baseDelay * time.Duration(1<<i) // 指数退避
		logger.Log.Warnf("触发 429 限流，等待 %v 后重试 (%d/%d)...", delay, i+1, a.maxRetries)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("summarize %q: %w", article.Title, lastErr)
}

func (a *Agent) run(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	msg, err := a.gen.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", errors.New("agent returned no message")
	}
	return CleanAnswer(msg.Content), nil
}

func isRateLimited(err error) bool {
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(strings.ToLower(s), "too many requests")
}
