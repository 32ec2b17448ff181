package provider

import (
	"context"
	"net/http"

	"github.com/John-Robertt/imdbtrend/internal/domain"
)

// Provider 把“站点变化”限制在 provider 包内部；核心流程只依赖统一接口与稳定的 domain.Record。
//
// 约束：
// - Fetch* 不做缓存、不做重试、不做限速（串行节奏由 run 层控制）
// - ParseListing 必须是纯函数：相同输入 => 相同输出；单条目结构缺失只留空字段，不返回错误
// - Fetch* 返回抓到的原始 HTML（即使解析结果为空），供快照使用
type Provider interface {
	Name() string
	// Supports 判断榜单 URL 是否由该 provider 解析（域名标记子串匹配）。
	Supports(listingURL string) bool
	ParseListing(html []byte) ([]domain.Record, error)
	FetchGenres(ctx context.Context, id domain.TitleID, c *http.Client) (genres []string, html []byte, err error)
	FetchCast(ctx context.Context, id domain.TitleID, c *http.Client) (cast []string, html []byte, err error)
}
