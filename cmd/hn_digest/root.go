package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hn_digest",
		Short: "Hacker News 最新文章中文摘要生成器",
		Long: `hn_digest 从 Hacker News newest RSS 获取文章列表，
为每篇文章运行一次带工具的 LLM 代理生成 300 到 500 字的中文概述，
最后输出一个静态 HTML 报告。`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "配置文件路径")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute 执行根命令
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
