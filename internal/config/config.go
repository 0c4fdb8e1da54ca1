package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	DefaultFeedURL        = "https://hnrss.org/newest"
	DefaultOutput         = "hacker_news_report.html"
	DefaultMaxStep        = 12
	DefaultRetryBaseDelay = 2 * time.Second
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultWebpageRunes   = 8000
	DefaultServerAddr     = "0.0.0.0:8000"
	DefaultServerTimeout  = 10 * time.Second
)

// 失败策略
const (
	OnErrorAbort       = "abort"
	OnErrorPlaceholder = "placeholder"
)

// 摘要格式
const (
	SummaryFormatText     = "text"
	SummaryFormatMarkdown = "markdown"
)

// Config 项目配置结构体
type Config struct {
	Feed        FeedConfig        `yaml:"feed"`
	LLM         LLMConfig         `yaml:"llm"`
	Agent       AgentConfig       `yaml:"agent"`
	Search      SearchConfig      `yaml:"search"`
	HTTP        HTTPConfig        `yaml:"http"`
	PDF         PDFConfig         `yaml:"pdf"`
	Webpage     WebpageConfig     `yaml:"webpage"`
	Report      ReportConfig      `yaml:"report"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// FeedConfig RSS 源配置
type FeedConfig struct {
	URL string `yaml:"url"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// AgentConfig 摘要代理配置
type AgentConfig struct {
	MaxStep        int           `yaml:"max_step"`
	Timeout        time.Duration `yaml:"timeout"` // 单篇文章的代理运行超时，0 表示不限制
	MaxRetries     int           `yaml:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// HTTPConfig 出站 HTTP 客户端配置
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// PDFConfig PDF 解析工具配置
type PDFConfig struct {
	// Timeout 为 0 时不设置超时
	Timeout time.Duration `yaml:"timeout"`
}

// WebpageConfig 网页阅读工具配置
type WebpageConfig struct {
	MaxRunes int `yaml:"max_runes"`
}

// ReportConfig 报告输出配置
type ReportConfig struct {
	Output        string `yaml:"output"`
	SummaryFormat string `yaml:"summary_format"`
}

// PipelineConfig 流程控制配置
type PipelineConfig struct {
	OnError     string `yaml:"on_error"`
	MaxArticles int    `yaml:"max_articles"`
}

// ServerConfig 预览服务配置
type ServerConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig 从指定路径加载配置，支持 ${ENV} 形式的环境变量占位符
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse 解析 YAML 配置内容并填充默认值
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Agent.MaxStep <= 0 {
		c.Agent.MaxStep = DefaultMaxStep
	}
	if c.Agent.RetryBaseDelay <= 0 {
		c.Agent.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.Webpage.MaxRunes <= 0 {
		c.Webpage.MaxRunes = DefaultWebpageRunes
	}
	if c.Report.Output == "" {
		c.Report.Output = DefaultOutput
	}
	if c.Report.SummaryFormat == "" {
		c.Report.SummaryFormat = SummaryFormatText
	}
	if c.Pipeline.OnError == "" {
		c.Pipeline.OnError = OnErrorAbort
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = DefaultServerTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	// 与原有限流配置保持一致：RPM/60 为速率，QPS 为突发
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 20
	}
}

// Validate 校验运行摘要流程所需的配置
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is required"))
	}
	switch c.Pipeline.OnError {
	case OnErrorAbort, OnErrorPlaceholder:
	default:
		errs = append(errs, fmt.Errorf("unknown pipeline.on_error: %s", c.Pipeline.OnError))
	}
	switch c.Report.SummaryFormat {
	case SummaryFormatText, SummaryFormatMarkdown:
	default:
		errs = append(errs, fmt.Errorf("unknown report.summary_format: %s", c.Report.SummaryFormat))
	}
	if c.Pipeline.MaxArticles < 0 {
		errs = append(errs, errors.New("pipeline.max_articles must not be negative"))
	}
	if c.Agent.MaxRetries < 0 {
		errs = append(errs, errors.New("agent.max_retries must not be negative"))
	}
	return errors.Join(errs...)
}
