// Package render 把需要执行脚本才能完整展开的榜单页渲染成 HTML 文本。
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/John-Robertt/imdbtrend/internal/infra/httpx"
)

// Renderer 返回页面在脚本执行、稳定后的完整 HTML。
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Func 让普通函数满足 Renderer（测试替身、离线 fixture）。
type Func func(ctx context.Context, url string) (string, error)

func (f Func) Render(ctx context.Context, url string) (string, error) { return f(ctx, url) }

// Error 表示渲染失败（浏览器启动、导航或取 HTML 任一步）。
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("渲染失败：url=%s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Chrome 用 headless Chrome 渲染页面。
//
// 约束：
// - 每次 Render 独立启动并关闭浏览器（allocator/browser context 都在本次调用内释放，失败也一样）
// - 固定等待 Settle 让懒加载内容出现；不做滚动、不做条件等待
// - Timeout 覆盖整次渲染（含浏览器启动）
type Chrome struct {
	Headless  bool
	Settle    time.Duration
	Timeout   time.Duration
	UserAgent string
	// ExecPath 非空时使用指定的 Chrome 可执行文件（配置项 chrome_path）。
	ExecPath string
}

// DefaultTimeout 在 Timeout 未设置时覆盖整次渲染。
const DefaultTimeout = 60 * time.Second

// NewChrome 返回使用浏览器 UA 的 Chrome renderer；execPath 为空时由 chromedp 自行查找。
func NewChrome(headless bool, settle, timeout time.Duration, execPath string) Chrome {
	return Chrome{
		Headless:  headless,
		Settle:    settle,
		Timeout:   timeout,
		UserAgent: httpx.BrowserHeaders["User-Agent"],
		ExecPath:  execPath,
	}
}

// settle 为 0 表示不等待；负值同样按 0 处理。默认值由配置层给出。
func (c Chrome) settle() time.Duration {
	if c.Settle < 0 {
		return 0
	}
	return c.Settle
}

func (c Chrome) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if ua := strings.TrimSpace(c.UserAgent); ua != "" {
		opts = append(opts, chromedp.UserAgent(ua))
	}
	if p := strings.TrimSpace(c.ExecPath); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}
	return opts
}

// tasks 是一次渲染的动作序列：导航、固定等待、取整页 HTML。
func (c Chrome) tasks(url string, out *string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.Sleep(c.settle()),
		chromedp.OuterHTML("html", out, chromedp.ByQuery),
	}
}

func (c Chrome) Render(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", &Error{URL: url, Err: errors.New("url 不能为空")}
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, c.timeout())
	defer cancelTimeout()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	if err := chromedp.Run(browserCtx, c.tasks(url, &html)); err != nil {
		return "", &Error{URL: url, Err: err}
	}
	if strings.TrimSpace(html) == "" {
		return "", &Error{URL: url, Err: errors.New("渲染结果为空")}
	}
	return html, nil
}
