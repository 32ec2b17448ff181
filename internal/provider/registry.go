package provider

import (
	"fmt"
	"strings"
)

// Registry 是 provider 的只读注册表（name 唯一，按注册顺序匹配 URL）。
type Registry struct {
	order []Provider
}

func NewRegistry(providers ...Provider) (Registry, error) {
	seen := make(map[string]struct{}, len(providers))
	order := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p == nil {
			return Registry{}, fmt.Errorf("provider 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(p.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("provider.Name 不能为空")
		}
		if _, ok := seen[name]; ok {
			return Registry{}, fmt.Errorf("重复的 provider：%q", name)
		}
		seen[name] = struct{}{}
		order = append(order, p)
	}
	return Registry{order: order}, nil
}

// Match 返回第一个声明支持 listingURL 的 provider。
func (r Registry) Match(listingURL string) (Provider, bool) {
	for _, p := range r.order {
		if p.Supports(listingURL) {
			return p, true
		}
	}
	return nil, false
}
