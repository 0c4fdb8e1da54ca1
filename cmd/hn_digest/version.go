package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// 构建时通过 ldflags 注入
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion 优先级：ldflags > debug.ReadBuildInfo > "(devel)"
func getVersion() string {
	if version != "" {
		return version
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok && buildInfo.Main.Version != "" {
		return buildInfo.Main.Version
	}
	return "(devel)"
}

func buildSetting(key, fallback string) string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}
	for _, setting := range buildInfo.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return fallback
}

func getCommit() string {
	if commit != "" {
		return commit
	}
	rev := buildSetting("vcs.revision", "unknown")
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func getDate() string {
	if date != "" {
		return date
	}
	return buildSetting("vcs.time", "unknown")
}

// NewVersionCmd 创建 version 子命令
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hn_digest version %s\n", getVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
		},
	}
}
