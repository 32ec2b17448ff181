package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// DefaultFileName 是 cwd 下可选配置文件的固定文件名。
const DefaultFileName = "imdbtrend.toml"

const (
	DefaultOutputDir      = "output"
	DefaultPosterDir      = "posters_show"
	DefaultCSVName        = "trending_data_show.csv"
	DefaultJSONName       = "trending_data_show.json"
	DefaultItemDelay      = time.Second
	DefaultRenderSettle   = 5 * time.Second
	DefaultRenderTimeout  = 60 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultCastLimit      = 10
	DefaultLogLevel       = "info"
)

// CLIArgs 是 CLI 可覆盖的入口，并保留“是否显式指定”的信息（例如 --headless=false 必须能覆盖配置）。
type CLIArgs struct {
	ConfigPath string

	OutputDir    string
	OutputDirSet bool

	ItemDelay    time.Duration
	ItemDelaySet bool

	Headless    bool
	HeadlessSet bool

	LogLevel    string
	LogLevelSet bool

	Snapshot    bool
	SnapshotSet bool
}

// FileConfig 对应 imdbtrend.toml 的解析结构。时长字段使用 Go duration 字符串（例如 "1s"）。
type FileConfig struct {
	RootDir        string `toml:"root_dir"`
	OutputDir      string `toml:"output_dir"`
	PosterDir      string `toml:"poster_dir"`
	CSVName        string `toml:"csv_name"`
	JSONName       string `toml:"json_name"`
	ItemDelay      string `toml:"item_delay"`
	RenderSettle   string `toml:"render_settle"`
	RenderTimeout  string `toml:"render_timeout"`
	RequestTimeout string `toml:"request_timeout"`
	Headless       *bool  `toml:"headless"`
	ChromePath     string `toml:"chrome_path"`
	ProxyURL       string `toml:"proxy_url"`
	SnapshotHTML   bool   `toml:"snapshot_html"`
	LogLevel       string `toml:"log_level"`
	CastLimit      int    `toml:"cast_limit"`
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// RootDir 是所有相对输出路径的基准（绝对路径）。
	RootDir string

	OutputDir string // 绝对路径
	PosterDir string // 绝对路径
	CSVName   string
	JSONName  string

	ItemDelay      time.Duration
	RenderSettle   time.Duration
	RenderTimeout  time.Duration
	RequestTimeout time.Duration

	Headless     bool
	ChromePath   string // 为空时由 chromedp 查找本机 Chrome
	ProxyURL     string
	SnapshotHTML bool
	LogLevel     string
	CastLimit    int
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Default 返回以 cwd 为根的内置默认配置。
func Default(cwd string) EffectiveConfig {
	root := absCleanFrom(cwd, ".")
	return EffectiveConfig{
		RootDir:        root,
		OutputDir:      filepath.Join(root, DefaultOutputDir),
		PosterDir:      filepath.Join(root, DefaultPosterDir),
		CSVName:        DefaultCSVName,
		JSONName:       DefaultJSONName,
		ItemDelay:      DefaultItemDelay,
		RenderSettle:   DefaultRenderSettle,
		RenderTimeout:  DefaultRenderTimeout,
		RequestTimeout: DefaultRequestTimeout,
		Headless:       true,
		LogLevel:       DefaultLogLevel,
		CastLimit:      DefaultCastLimit,
	}
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/imdbtrend.toml（可选）
//
// 覆盖优先级：CLI > 配置文件 > 内置默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, DefaultFileName)
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if required && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}

	eff, err := merge(cwdAbs, cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return eff, nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	eff := Default(cwdAbs)

	if strings.TrimSpace(fc.RootDir) != "" {
		eff.RootDir = absCleanFrom(cwdAbs, fc.RootDir)
	}

	outputDir := DefaultOutputDir
	if strings.TrimSpace(fc.OutputDir) != "" {
		outputDir = fc.OutputDir
	}
	if cli.OutputDirSet {
		if strings.TrimSpace(cli.OutputDir) == "" {
			return EffectiveConfig{}, fmt.Errorf("--out 不能为空")
		}
		// CLI 给的相对路径以 cwd 为基准，更符合命令行直觉。
		outputDir = absCleanFrom(cwdAbs, cli.OutputDir)
	}
	eff.OutputDir = absCleanFrom(eff.RootDir, outputDir)

	posterDir := DefaultPosterDir
	if strings.TrimSpace(fc.PosterDir) != "" {
		posterDir = fc.PosterDir
	}
	eff.PosterDir = absCleanFrom(eff.RootDir, posterDir)

	if name := strings.TrimSpace(fc.CSVName); name != "" {
		if err := validateFileName("csv_name", name); err != nil {
			return EffectiveConfig{}, err
		}
		eff.CSVName = name
	}
	if name := strings.TrimSpace(fc.JSONName); name != "" {
		if err := validateFileName("json_name", name); err != nil {
			return EffectiveConfig{}, err
		}
		eff.JSONName = name
	}

	var err error
	if eff.ItemDelay, err = parseDuration("item_delay", fc.ItemDelay, eff.ItemDelay, true); err != nil {
		return EffectiveConfig{}, err
	}
	if cli.ItemDelaySet {
		if cli.ItemDelay < 0 {
			return EffectiveConfig{}, fmt.Errorf("--delay 不能为负数：%s", cli.ItemDelay)
		}
		eff.ItemDelay = cli.ItemDelay
	}
	if eff.RenderSettle, err = parseDuration("render_settle", fc.RenderSettle, eff.RenderSettle, true); err != nil {
		return EffectiveConfig{}, err
	}
	if eff.RenderTimeout, err = parseDuration("render_timeout", fc.RenderTimeout, eff.RenderTimeout, false); err != nil {
		return EffectiveConfig{}, err
	}
	if eff.RequestTimeout, err = parseDuration("request_timeout", fc.RequestTimeout, eff.RequestTimeout, false); err != nil {
		return EffectiveConfig{}, err
	}
	if eff.RenderTimeout <= eff.RenderSettle {
		return EffectiveConfig{}, fmt.Errorf("render_timeout（%s）必须大于 render_settle（%s）", eff.RenderTimeout, eff.RenderSettle)
	}

	if fc.Headless != nil {
		eff.Headless = *fc.Headless
	}
	if cli.HeadlessSet {
		eff.Headless = cli.Headless
	}

	if p := strings.TrimSpace(fc.ChromePath); p != "" {
		eff.ChromePath = absCleanFrom(cwdAbs, p)
	}

	eff.ProxyURL = strings.TrimSpace(fc.ProxyURL)
	if eff.ProxyURL != "" {
		u, err := url.Parse(eff.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, fmt.Errorf("proxy_url 无效：%q", eff.ProxyURL)
		}
	}

	eff.SnapshotHTML = fc.SnapshotHTML
	if cli.SnapshotSet {
		eff.SnapshotHTML = cli.Snapshot
	}

	if lv := strings.TrimSpace(fc.LogLevel); lv != "" {
		eff.LogLevel = strings.ToLower(lv)
	}
	if cli.LogLevelSet {
		eff.LogLevel = strings.ToLower(strings.TrimSpace(cli.LogLevel))
	}
	if err := validateLogLevel(eff.LogLevel); err != nil {
		return EffectiveConfig{}, err
	}

	// 演员上限：范围 [1, 10]；超出截断。
	if fc.CastLimit != 0 {
		eff.CastLimit = fc.CastLimit
	}
	if eff.CastLimit < 1 {
		eff.CastLimit = 1
	}
	if eff.CastLimit > DefaultCastLimit {
		eff.CastLimit = DefaultCastLimit
	}

	return eff, nil
}

// CSVPath / JSONPath 返回两个输出文件的绝对路径。
func (e EffectiveConfig) CSVPath() string  { return filepath.Join(e.OutputDir, e.CSVName) }
func (e EffectiveConfig) JSONPath() string { return filepath.Join(e.OutputDir, e.JSONName) }

// SnapshotDir 是 HTML 快照目录（仅 snapshot_html=true 时写入）。
func (e EffectiveConfig) SnapshotDir() string { return filepath.Join(e.OutputDir, "html") }

func parseDuration(key, raw string, def time.Duration, allowZero bool) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s 不是合法时长：%q", key, raw)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("%s 超出范围：%q", key, raw)
	}
	return d, nil
}

func validateFileName(key, name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%s 只能是文件名，实际是 %q", key, name)
	}
	return nil
}

func validateLogLevel(lv string) error {
	switch lv {
	case "trace", "debug", "info", "warn", "error", "off":
		return nil
	case "":
		return fmt.Errorf("log_level 不能为空")
	default:
		return fmt.Errorf("log_level 只能是 trace|debug|info|warn|error|off，实际是 %q", lv)
	}
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
