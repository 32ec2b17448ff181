package snapshot

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/imdbtrend/internal/domain"
	"github.com/John-Robertt/imdbtrend/internal/infra/fsx"
)

// Store 把抓到的原始 HTML 写到 <output>/html/ 下，便于离线排查选择器漂移或补充测试 fixture。
//
// 约束：
// - 只写不读：快照从不参与下一次运行（不做增量/续跑）
// - Disabled=true 时所有写入都是 no-op
type Store struct {
	Dir      string
	Disabled bool
}

const (
	KindDetail  = "title"
	KindCredits = "fullcredits"
)

func New(dir string, enabled bool) Store {
	return Store{
		Dir:      filepath.Clean(strings.TrimSpace(dir)),
		Disabled: !enabled,
	}
}

// ListingPath 返回榜单页快照路径。
func (s Store) ListingPath() string {
	return filepath.Join(s.Dir, "listing.html")
}

// DetailPath 返回某条目详情类页面的快照路径（kind 为 title / fullcredits）。
func (s Store) DetailPath(id domain.TitleID, kind string) (string, error) {
	k, err := cleanKind(kind)
	if err != nil {
		return "", err
	}
	if _, ok := domain.ParseTitleID(string(id)); !ok {
		return "", fmt.Errorf("非法标识符：%q", id)
	}
	return filepath.Join(s.Dir, string(id)+"."+k+".html"), nil
}

func (s Store) WriteListing(html []byte) error {
	if s.Disabled {
		return nil
	}
	return fsx.WriteFileAtomic(s.Dir, filepath.Base(s.ListingPath()), html)
}

func (s Store) WriteDetail(id domain.TitleID, kind string, html []byte) error {
	if s.Disabled {
		return nil
	}
	p, err := s.DetailPath(id, kind)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.Dir, filepath.Base(p), html)
}

var kindRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanKind(k string) (string, error) {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return "", fmt.Errorf("kind 不能为空")
	}
	// 最小约束：避免路径穿越。
	if !kindRE.MatchString(k) {
		return "", fmt.Errorf("非法 kind：%q", k)
	}
	return k, nil
}
