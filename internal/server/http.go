// Package server 提供本地预览生成报告的 HTTP 服务
package server

import (
	"errors"
	"io/fs"
	nethttp "net/http"
	"os"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/hn_digest/internal/config"
	"github.com/iWorld-y/hn_digest/internal/logger"
)

// NewHTTPServer 创建预览服务，报告文件在每次请求时重新读取
func NewHTTPServer(c config.ServerConfig, reportPath string) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout > 0 {
		opts = append(opts, http.Timeout(c.Timeout))
	}

	srv := http.NewServer(opts...)

	serveReport := func(w nethttp.ResponseWriter, r *nethttp.Request) {
		content, err := os.ReadFile(reportPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				nethttp.Error(w, "report not generated yet, run `hn_digest run` first", nethttp.StatusNotFound)
				return
			}
			logger.Log.Errorf("读取报告失败 [%s]: %v", reportPath, err)
			nethttp.Error(w, "failed to read report", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(content)
	}

	srv.HandleFunc("/", serveReport)
	srv.HandleFunc("/report", serveReport)
	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return srv
}
