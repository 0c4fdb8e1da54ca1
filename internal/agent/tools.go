package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/hn_digest/internal/logger"
	"github.com/iWorld-y/hn_digest/internal/pdf"
	"github.com/iWorld-y/hn_digest/internal/search"
	"github.com/iWorld-y/hn_digest/internal/webpage"
)

// 工具名称
const (
	ToolPDFParser    = "pdf_parser"
	ToolWebSearch    = "web_search"
	ToolVisitWebpage = "visit_webpage"
)

const searchMaxResults = 5

// DocumentExtractor 从 PDF 链接提取文本
type DocumentExtractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

// WebpageReader 读取网页正文
type WebpageReader interface {
	Read(ctx context.Context, url string) (*webpage.Page, error)
}

// 以下工具从不向代理返回 error：所有失败都转换为文本，由模型自行决定下一步

type pdfParserTool struct {
	extractor DocumentExtractor
}

// NewPDFParserTool 把 PDF 提取器包装为代理工具
func NewPDFParserTool(extractor DocumentExtractor) tool.InvokableTool {
	return &pdfParserTool{extractor: extractor}
}

func (t *pdfParserTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolPDFParser,
		Desc: "This is a tool that returns the content from the given PDF link. It returns the whole readable content of the PDF file.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"link": {Type: schema.String, Desc: "the url link to an PDF file.", Required: true},
		}),
	}, nil
}

func (t *pdfParserTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return pdf.Message(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	text, err := t.extractor.Extract(ctx, args.Link)
	if err != nil {
		logger.Log.Warnf("PDF 解析失败 [%s]: %v", args.Link, err)
		return pdf.Message(err), nil
	}
	logger.Log.Debugf("PDF 解析完成 [%s]: %d 字节", args.Link, len(text))
	return text, nil
}

type webSearchTool struct {
	searcher search.Searcher
}

// NewWebSearchTool 把搜索服务包装为代理工具
func NewWebSearchTool(searcher search.Searcher) tool.InvokableTool {
	return &webSearchTool{searcher: searcher}
}

func (t *webSearchTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolWebSearch,
		Desc: "Performs a web search for the given query and returns the top results with title, url and a short snippet.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "the search query to perform.", Required: true},
		}),
	}, nil
}

func (t *webSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "Search failed: invalid arguments: " + err.Error(), nil
	}

	resp, err := t.searcher.Search(ctx, &search.Request{Query: args.Query, MaxResults: searchMaxResults})
	if err != nil {
		logger.Log.Warnf("搜索失败 [%s]: %v", args.Query, err)
		return "Search failed: " + err.Error(), nil
	}
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No results found for query '%s'.", args.Query), nil
	}

	var sb strings.Builder
	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n", i+1, r.Title, r.URL)
		if r.Content != "" {
			fmt.Fprintf(&sb, "%s\n", r.Content)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String()), nil
}

type visitWebpageTool struct {
	reader WebpageReader
}

// NewVisitWebpageTool 把网页阅读器包装为代理工具
func NewVisitWebpageTool(reader WebpageReader) tool.InvokableTool {
	return &visitWebpageTool{reader: reader}
}

func (t *visitWebpageTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolVisitWebpage,
		Desc: "Visits a webpage at the given url and returns its main readable text content.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"url": {Type: schema.String, Desc: "the url of the webpage to visit.", Required: true},
		}),
	}, nil
}

func (t *visitWebpageTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "Error fetching the webpage: invalid arguments: " + err.Error(), nil
	}

	page, err := t.reader.Read(ctx, args.URL)
	if err != nil {
		logger.Log.Warnf("网页读取失败 [%s]: %v", args.URL, err)
		return "Error fetching the webpage: " + err.Error(), nil
	}
	if page.Title == "" {
		return page.Text, nil
	}
	return "# " + page.Title + "\n\n" + page.Text, nil
}
