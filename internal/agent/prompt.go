package agent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iWorld-y/hn_digest/internal/model"
)

// 摘要长度的期望范围（字符数），仅用于告警
const (
	MinSummaryRunes = 300
	MaxSummaryRunes = 500
)

const systemPrompt = `你是一个可以调用工具的助手。需要时请调用工具获取信息，最终只输出文章概述正文，不要输出工具调用过程。`

const summaryPromptTpl = `你是专业的科技杂志编辑，请阅读文章 '%s' 的链接 '%s' 的内容，运用你的专业能力，总结整理一篇内容概述。
在整理时请注意以下几个要点
- 如链接引用的是视频，请按照文章标题搜索分析相关信息
- 如链接引用的是PDF文件，请使用 ` + "`" + ToolPDFParser + "`" + ` 工具将PDF链接解析成文本
- 如果遇到其他无法正常处理的链接，请搜索文章标题并整理概述
- 如果遇到搜索失败，请参考标题根据你自己的理解撰写概述
- 总结的概述应该在 %d 到 %d 字之间
- 无论什么情况，概述都应该是以*中文*撰写的
爱你！`

// BuildPrompt 生成单篇文章的摘要指令
func BuildPrompt(article model.Article) string {
	return fmt.Sprintf(summaryPromptTpl, article.Title, article.URL, MinSummaryRunes, MaxSummaryRunes)
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// CleanAnswer 去掉推理模型输出的 <think> 块和首尾空白
func CleanAnswer(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}
