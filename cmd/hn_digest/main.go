// Package main 是 hn_digest 命令行入口。
//
// hn_digest 拉取 Hacker News 最新文章，由 LLM 代理逐篇撰写中文概述，并生成静态 HTML 报告。
//
// 用法：
//
//	hn_digest run --config configs/config.yaml
//	hn_digest serve
package main

func main() {
	Execute()
}
