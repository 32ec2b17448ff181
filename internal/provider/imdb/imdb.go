package imdb

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/imdbtrend/internal/domain"
	providerx "github.com/John-Robertt/imdbtrend/internal/provider"
)

// DomainMarker 是榜单 URL 必须包含的域名标记。
const DomainMarker = "imdb.com"

// MaxCast 是 cast 列表的硬上限。
const MaxCast = 10

// Provider 实现 IMDb 榜单页解析与两类详情页（类型 / 演职员）的抓取解析。
//
// 约束：
// - 详情 URL 由标识符确定性拼出：<base>/title/<id>/ 与 <base>/title/<id>/fullcredits
// - Fetch* 不做缓存/重试/限速（由上层统一控制）
type Provider struct {
	// BaseURL 允许把详情页请求指向其它主机（镜像或测试服务器）；为空时使用 https://www.imdb.com。
	// 记录中的 canonical URL 不受影响。
	BaseURL string
	// CastLimit 是 cast 上限；<=0 或 >10 时按 10 处理。
	CastLimit int
}

var _ providerx.Provider = Provider{}

func (Provider) Name() string { return "imdb" }

func (Provider) Supports(listingURL string) bool {
	return strings.Contains(listingURL, DomainMarker)
}

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return domain.BaseURL
	}
	return strings.TrimRight(u, "/")
}

func (p Provider) castLimit() int {
	if p.CastLimit <= 0 || p.CastLimit > MaxCast {
		return MaxCast
	}
	return p.CastLimit
}

// DetailURL 是类型/简介所在的详情页。
func (p Provider) DetailURL(id domain.TitleID) string {
	return p.baseURL() + "/title/" + string(id) + "/"
}

// CreditsURL 是完整演职员表页。
func (p Provider) CreditsURL(id domain.TitleID) string {
	return p.baseURL() + "/title/" + string(id) + "/fullcredits"
}

// ParseListing 把渲染后的榜单页解析为骨架记录（按文档顺序）。
func (Provider) ParseListing(html []byte) ([]domain.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	return parseListing(doc), nil
}

// FetchGenres 抓取详情页并提取类型标签。失败时 genres 为空列表。
func (p Provider) FetchGenres(ctx context.Context, id domain.TitleID, c *http.Client) ([]string, []byte, error) {
	b, err := providerx.FetchHTML(ctx, c, p.DetailURL(id))
	if err != nil {
		return []string{}, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return []string{}, b, err
	}
	return parseGenres(doc), b, nil
}

// FetchCast 抓取完整演职员表并提取至多 CastLimit 个演员。失败时 cast 为空列表。
func (p Provider) FetchCast(ctx context.Context, id domain.TitleID, c *http.Client) ([]string, []byte, error) {
	b, err := providerx.FetchHTML(ctx, c, p.CreditsURL(id))
	if err != nil {
		return []string{}, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return []string{}, b, err
	}
	cast, _ := parseCast(doc, p.castLimit())
	return cast, b, nil
}
