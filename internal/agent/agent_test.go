package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/hn_digest/internal/config"
	dm "github.com/iWorld-y/hn_digest/internal/model"
	"github.com/iWorld-y/hn_digest/internal/pdf"
	"github.com/iWorld-y/hn_digest/internal/search"
	"github.com/iWorld-y/hn_digest/internal/webpage"
)

// fakeExtractor 模拟 PDF 提取器
type fakeExtractor struct {
	text  string
	err   error
	links []string
}

func (f *fakeExtractor) Extract(_ context.Context, link string) (string, error) {
	f.links = append(f.links, link)
	return f.text, f.err
}

type fakeSearcher struct {
	resp *search.Response
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _ *search.Request) (*search.Response, error) {
	return f.resp, f.err
}

type fakeReader struct {
	page *webpage.Page
	err  error
}

func (f *fakeReader) Read(_ context.Context, _ string) (*webpage.Page, error) {
	return f.page, f.err
}

// scriptedGenerator 按顺序返回预设的结果
type scriptedGenerator struct {
	replies []string
	errs    []error
	calls   int
	inputs  [][]*schema.Message
	ctxs    []context.Context
}

func (g *scriptedGenerator) Generate(ctx context.Context, input []*schema.Message, _ ...agent.AgentOption) (*schema.Message, error) {
	i := g.calls
	g.calls++
	g.inputs = append(g.inputs, input)
	g.ctxs = append(g.ctxs, ctx)
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if i >= len(g.replies) {
		return nil, errors.New("no scripted reply")
	}
	return schema.AssistantMessage(g.replies[i], nil), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("concurrency:\n  rpm: 60000\n  qps: 10\nagent:\n  retry_base_delay: 1ms\n"))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

var foo = dm.Article{Title: "Foo", URL: "http://a.test/foo"}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(foo)
	for _, want := range []string{"'Foo'", "'http://a.test/foo'", "`pdf_parser`", "300 到 500", "*中文*", "视频"} {
		if !strings.Contains(p, want) {
			t.Errorf("BuildPrompt() missing %q:\n%s", want, p)
		}
	}
}

func TestCleanAnswer(t *testing.T) {
	got := CleanAnswer("<think>\nlet me search\n</think>\n  这是概述。 \n")
	if got != "这是概述。" {
		t.Errorf("CleanAnswer() = %q", got)
	}
}

func TestPDFParserTool(t *testing.T) {
	ctx := context.Background()

	ext := &fakeExtractor{text: "page1page2"}
	out, err := NewPDFParserTool(ext).InvokableRun(ctx, `{"link":"http://a.test/x.pdf"}`)
	if err != nil || out != "page1page2" {
		t.Fatalf("InvokableRun() = %q, %v", out, err)
	}
	if len(ext.links) != 1 || ext.links[0] != "http://a.test/x.pdf" {
		t.Errorf("links = %v", ext.links)
	}

	ext = &fakeExtractor{err: fmt.Errorf("%w: %w", pdf.ErrTimeout, context.DeadlineExceeded)}
	out, err = NewPDFParserTool(ext).InvokableRun(ctx, `{"link":"http://a.test/slow.pdf"}`)
	if err != nil || out != pdf.TimeoutMessage {
		t.Errorf("timeout: InvokableRun() = %q, %v", out, err)
	}

	ext = &fakeExtractor{err: fmt.Errorf("%w: not a PDF file", pdf.ErrParse)}
	out, err = NewPDFParserTool(ext).InvokableRun(ctx, `{"link":"http://a.test/page.html"}`)
	if err != nil || !strings.Contains(out, "not a PDF file") || !strings.HasPrefix(out, "An unexpected error occurred: ") {
		t.Errorf("parse: InvokableRun() = %q, %v", out, err)
	}

	out, err = NewPDFParserTool(ext).InvokableRun(ctx, `{bad json`)
	if err != nil || !strings.HasPrefix(out, "An unexpected error occurred: ") {
		t.Errorf("bad args: InvokableRun() = %q, %v", out, err)
	}

	info, err := NewPDFParserTool(ext).Info(ctx)
	if err != nil || info.Name != ToolPDFParser {
		t.Errorf("Info() = %+v, %v", info, err)
	}
}

func TestWebSearchTool(t *testing.T) {
	ctx := context.Background()

	s := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{Title: "Foo launch", URL: "https://foo.test", Content: "Foo is out"},
		{Title: "Foo review", URL: "https://review.test"},
	}}}
	out, err := NewWebSearchTool(s).InvokableRun(ctx, `{"query":"Foo"}`)
	if err != nil {
		t.Fatal(err)
	}
	want := "1. Foo launch\nhttps://foo.test\nFoo is out\n\n2. Foo review\nhttps://review.test"
	if out != want {
		t.Errorf("InvokableRun() = %q, want %q", out, want)
	}

	out, _ = NewWebSearchTool(&fakeSearcher{resp: &search.Response{}}).InvokableRun(ctx, `{"query":"Foo"}`)
	if out != "No results found for query 'Foo'." {
		t.Errorf("empty: InvokableRun() = %q", out)
	}

	out, err = NewWebSearchTool(&fakeSearcher{err: errors.New("quota")}).InvokableRun(ctx, `{"query":"Foo"}`)
	if err != nil || out != "Search failed: quota" {
		t.Errorf("error: InvokableRun() = %q, %v", out, err)
	}
}

func TestVisitWebpageTool(t *testing.T) {
	ctx := context.Background()

	out, err := NewVisitWebpageTool(&fakeReader{page: &webpage.Page{Title: "Foo", Text: "body"}}).InvokableRun(ctx, `{"url":"http://a.test/foo"}`)
	if err != nil || out != "# Foo\n\nbody" {
		t.Errorf("InvokableRun() = %q, %v", out, err)
	}

	out, err = NewVisitWebpageTool(&fakeReader{err: errors.New("fetch http 403")}).InvokableRun(ctx, `{"url":"http://a.test/foo"}`)
	if err != nil || out != "Error fetching the webpage: fetch http 403" {
		t.Errorf("error: InvokableRun() = %q, %v", out, err)
	}
}

func TestTools(t *testing.T) {
	tools := Tools(Deps{Extractor: &fakeExtractor{}, Searcher: &fakeSearcher{}, Reader: &fakeReader{}})
	var names []string
	for _, tl := range tools {
		info, err := tl.Info(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, info.Name)
	}
	if got := strings.Join(names, ","); got != "pdf_parser,web_search,visit_webpage" {
		t.Errorf("Tools() = %s", got)
	}
}

func TestAgent_Summarize(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"<think>hmm</think>这是一个关于Foo的简要概述。"}}
	cfg := testConfig(t)
	cfg.Agent.Timeout = time.Minute
	a := newAgent(gen, cfg)

	got, err := a.Summarize(context.Background(), foo)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "这是一个关于Foo的简要概述。" {
		t.Errorf("Summarize() = %q", got)
	}

	input := gen.inputs[0]
	if len(input) != 2 || input[0].Role != schema.System || input[1].Role != schema.User {
		t.Fatalf("input = %+v", input)
	}
	if input[1].Content != BuildPrompt(foo) {
		t.Errorf("user message = %q", input[1].Content)
	}
	if _, ok := gen.ctxs[0].Deadline(); !ok {
		t.Error("agent timeout not applied to context")
	}
}

func TestAgent_RetryOnRateLimit(t *testing.T) {
	gen := &scriptedGenerator{
		errs:    []error{errors.New("error, status code: 429, message: Too Many Requests"), nil},
		replies: []string{"", "概述"},
	}
	cfg := testConfig(t)
	cfg.Agent.MaxRetries = 2

	got, err := newAgent(gen, cfg).Summarize(context.Background(), foo)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "概述" || gen.calls != 2 {
		t.Errorf("Summarize() = %q after %d calls", got, gen.calls)
	}
}

func TestAgent_NoRetryByDefault(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("status code: 429")}}

	_, err := newAgent(gen, testConfig(t)).Summarize(context.Background(), foo)
	if err == nil {
		t.Fatal("Summarize() expected error")
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
	if !strings.Contains(err.Error(), `"Foo"`) {
		t.Errorf("error %q does not name the article", err)
	}
}

func TestAgent_NoRetryOnOtherErrors(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("invalid api key"), nil}, replies: []string{"", "x"}}
	cfg := testConfig(t)
	cfg.Agent.MaxRetries = 3

	if _, err := newAgent(gen, cfg).Summarize(context.Background(), foo); err == nil {
		t.Fatal("Summarize() expected error")
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}

// scriptedModel 模拟支持工具调用的对话模型
type scriptedModel struct {
	replies []*schema.Message
	calls   int
	tools   []*schema.ToolInfo
	inputs  [][]*schema.Message
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.inputs = append(m.inputs, input)
	if m.calls >= len(m.replies) {
		return nil, errors.New("no scripted reply")
	}
	msg := m.replies[m.calls]
	m.calls++
	return msg, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.tools = tools
	return m, nil
}

func TestNew_ReactAgentCallsPDFTool(t *testing.T) {
	cm := &scriptedModel{replies: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: schema.FunctionCall{Name: ToolPDFParser, Arguments: `{"link":"http://a.test/paper.pdf"}`},
		}}),
		schema.AssistantMessage("这篇论文介绍了Foo。", nil),
	}}
	ext := &fakeExtractor{err: fmt.Errorf("%w: context deadline exceeded", pdf.ErrTimeout)}

	a, err := New(context.Background(), cm, Deps{Extractor: ext, Searcher: &fakeSearcher{}, Reader: &fakeReader{}}, testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(cm.tools) != 3 {
		t.Errorf("model bound %d tools, want 3", len(cm.tools))
	}

	got, err := a.Summarize(context.Background(), dm.Article{Title: "Foo", URL: "http://a.test/paper.pdf"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "这篇论文介绍了Foo。" {
		t.Errorf("Summarize() = %q", got)
	}
	if len(ext.links) != 1 {
		t.Fatalf("pdf tool called %d times", len(ext.links))
	}

	// 第二次调用模型时，输入中应包含工具返回的超时提示
	last := cm.inputs[len(cm.inputs)-1]
	toolMsg := last[len(last)-1]
	if toolMsg.Role != schema.Tool || toolMsg.Content != pdf.TimeoutMessage {
		t.Errorf("tool message = %+v", toolMsg)
	}
}
