// Package report 把摘要结果渲染为独立的静态 HTML 页面
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/iWorld-y/hn_digest/internal/config"
	"github.com/iWorld-y/hn_digest/internal/model"
)

// Renderer 报告渲染器
type Renderer struct {
	tpl      *template.Template
	markdown bool
	md       goldmark.Markdown
	policy   *bluemonday.Policy
}

type itemData struct {
	Title   string
	Link    string
	Summary any // string 或已净化的 template.HTML
}

type pageData struct {
	GeneratedAt time.Time
	Items       []itemData
}

// NewRenderer 按摘要格式创建渲染器，format 为 text 或 markdown
func NewRenderer(format string) (*Renderer, error) {
	tpl, err := template.New("report").Parse(htmlTpl)
	if err != nil {
		return nil, err
	}

	r := &Renderer{tpl: tpl}
	switch format {
	case "", config.SummaryFormatText:
	case config.SummaryFormatMarkdown:
		r.markdown = true
		r.md = goldmark.New()
		r.policy = bluemonday.UGCPolicy()
	default:
		return nil, fmt.Errorf("unknown summary format: %s", format)
	}
	return r, nil
}

// Render 按输入顺序渲染所有条目，不做排序、过滤或去重
func (r *Renderer) Render(items []model.SummarizedArticle, generatedAt time.Time) (string, error) {
	data := pageData{GeneratedAt: generatedAt, Items: make([]itemData, 0, len(items))}
	for _, it := range items {
		summary, err := r.summary(it.Summary)
		if err != nil {
			return "", fmt.Errorf("render summary of %q: %w", it.Title, err)
		}
		data.Items = append(data.Items, itemData{Title: it.Title, Link: it.Link, Summary: summary})
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) summary(s string) (any, error) {
	if !r.markdown {
		return s, nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s), &buf); err != nil {
		return nil, err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// WriteFile 覆盖写入报告文件
func WriteFile(path, html string) error {
	return os.WriteFile(path, []byte(html), 0o644)
}
