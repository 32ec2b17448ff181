package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name 是根 logger 的名字；子组件用 Named 派生（例如 imdbtrend.run）。
const Name = "imdbtrend"

// New 构造写往 w 的诊断 logger（w 为 nil 时写 stderr）。
//
// 约束：诊断输出只是“旁路”，调用方不得依据日志结果改变字段填充。
func New(level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            Name,
		Level:           ParseLevel(level),
		Output:          w,
		IncludeLocation: false,
		Color:           hclog.AutoColor,
	})
}

// ParseLevel 把配置中的级别字符串映射为 hclog.Level；未知值回落到 Info。
func ParseLevel(level string) hclog.Level {
	if level == "off" {
		return hclog.Off
	}
	lv := hclog.LevelFromString(level)
	if lv == hclog.NoLevel {
		return hclog.Info
	}
	return lv
}

// OrNull 把 nil logger 替换为空实现，免得每个调用点判空。
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
