// Package pdf 下载 PDF 文档并提取纯文本，供摘要代理作为工具调用
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// 提取失败的分类
var (
	ErrTimeout = errors.New("pdf: request timed out")
	ErrRequest = errors.New("pdf: request failed")
	ErrParse   = errors.New("pdf: parse failed")
)

// TimeoutMessage 请求超时时返回给代理的固定提示
const TimeoutMessage = "The request timed out. Please try again later or check the URL."

// Extractor 下载 PDF 并按页拼接文本
type Extractor struct {
	client  *http.Client
	timeout time.Duration
}

// NewExtractor 创建 PDF 提取器。timeout 为 0 时不限制请求时长
func NewExtractor(client *http.Client, timeout time.Duration) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{client: client, timeout: timeout}
}

// Extract 下载 link 指向的文档，返回所有页面按顺序拼接的文本，页面之间不加分隔符
func (e *Extractor) Extract(ctx context.Context, link string) (string, error) {
	data, err := e.download(ctx, link)
	if err != nil {
		return "", err
	}
	return ParseText(data)
}

func (e *Extractor) download(ctx context.Context, link string) ([]byte, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRequest, link, resp.StatusCode)
	}

	// 整个文档读入内存，不做大小限制
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}
	return data, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrRequest, err)
}

// ParseText 解析 PDF 字节流并拼接每一页的纯文本
func ParseText(data []byte) (text string, err error) {
	// 损坏的文档可能让解析库 panic
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}

		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrParse, i, err)
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

// Message 把提取错误转换为代理可读的文本
func Message(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return TimeoutMessage
	case errors.Is(err, ErrRequest):
		return "Error fetching the webpage: " + err.Error()
	default:
		return "An unexpected error occurred: " + err.Error()
	}
}
