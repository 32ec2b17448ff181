package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/imdbtrend/internal/config"
	"github.com/John-Robertt/imdbtrend/internal/render"
)

// env 收拢 CLI 的外部依赖，测试时整体替换。
type env struct {
	getwd       func() (string, error)
	newRenderer func(eff config.EffectiveConfig) render.Renderer
	// client 非空时覆盖按配置构造的 HTTP client。
	client *http.Client
	// detailBaseURL 非空时把详情页请求指向其它主机。
	detailBaseURL string
}

func defaultEnv() env {
	return env{
		getwd: os.Getwd,
		newRenderer: func(eff config.EffectiveConfig) render.Renderer {
			return render.NewChrome(eff.Headless, eff.RenderSettle, eff.RenderTimeout, eff.ChromePath)
		},
	}
}

func newRootCommand(e env) *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "imdbtrend",
		Short:         "抓取 IMDb 热门榜单并补全类型、演员与海报",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "配置文件路径（默认读取 ./imdbtrend.toml，不存在则忽略）")

	rootCmd.AddCommand(newRunCommand(e, &configFlag))
	return rootCmd
}
