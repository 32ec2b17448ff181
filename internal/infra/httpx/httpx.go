package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// BrowserHeaders 是详情页/海报请求固定携带的浏览器请求头。
var BrowserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
}

// Transport 把“固定浏览器头 + 代理 + keep-alive 策略”固化为统一策略。
//
// 约束：只发一次，不重试、不限速（调用方负责串行节奏）。
type Transport struct {
	Base *http.Transport

	// Headers 仅在请求未显式设置同名头时补上。
	Headers map[string]string

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone：不在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	for k, v := range t.Headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// NewClient 构造详情页与海报共用的 HTTP client。
//
// 规则：
// - timeout<=0 时使用 10s
// - proxyURL 非空：走代理，且禁用 keep-alive（每请求新连接）
// - 每个请求补齐 BrowserHeaders
func NewClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	disableKeepAlives := false
	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	headers := make(map[string]string, len(BrowserHeaders))
	for k, v := range BrowserHeaders {
		headers[k] = v
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			Headers:           headers,
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: timeout,
	}, nil
}
