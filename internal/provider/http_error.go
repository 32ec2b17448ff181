package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Error 是 provider 阶段的可追溯错误（stage 例如 "genres" / "cast" / "listing"）。
type Error struct {
	Provider string
	Stage    string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FetchHTML 发起一次 GET；非 2xx 返回 *HTTPStatusError。
func FetchHTML(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("http client 不能为空")
	}
	if strings.TrimSpace(u) == "" {
		return nil, fmt.Errorf("url 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
