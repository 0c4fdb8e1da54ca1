package main

import (
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/hn_digest/internal/logger"
	"github.com/iWorld-y/hn_digest/internal/server"
)

// NewServeCmd 创建 serve 子命令
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务预览已生成的报告",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			id, _ := os.Hostname()
			kl := log.With(logger.NewKratosLogger(logger.Log),
				"service.id", id,
				"service.name", "hn_digest",
				"service.version", getVersion(),
			)

			srv := server.NewHTTPServer(cfg.Server, cfg.Report.Output)
			logger.Log.Infof("预览服务监听 %s, 报告: %s", cfg.Server.Addr, cfg.Report.Output)

			app := kratos.New(
				kratos.ID(id),
				kratos.Name("hn_digest"),
				kratos.Version(getVersion()),
				kratos.Context(cmd.Context()),
				kratos.Logger(kl),
				kratos.Server(srv),
			)
			return app.Run()
		},
	}
}
