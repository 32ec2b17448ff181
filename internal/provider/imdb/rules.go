package imdb

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// AttrMatch 要求节点的某个属性存在，且值（整体）能被 Pattern 搜索命中。
type AttrMatch struct {
	Attr    string
	Pattern *regexp.Regexp
}

// Rule 是一条命名的结构选择规则：CSS 选择器 + 若干属性正则过滤。
//
// class 上的正则按“搜索”语义匹配（例如 cli-parent 能命中 "ipc-metadata-list-summary-item cli-parent"），
// 因此站点在 class 上追加 hash 后缀时规则仍然有效。
type Rule struct {
	Name     string
	Selector string
	Attrs    []AttrMatch
}

// Find 返回 s 后代中所有命中规则的节点（文档顺序）。
func (r Rule) Find(s *goquery.Selection) *goquery.Selection {
	sel := s.Find(r.Selector)
	if len(r.Attrs) == 0 {
		return sel
	}
	return sel.FilterFunction(func(_ int, n *goquery.Selection) bool {
		for _, m := range r.Attrs {
			v, ok := n.Attr(m.Attr)
			if !ok || !m.Pattern.MatchString(v) {
				return false
			}
		}
		return true
	})
}

// First 返回第一个命中节点（可能为空 Selection）。
func (r Rule) First(s *goquery.Selection) *goquery.Selection {
	return r.Find(s).First()
}

func classMatch(expr string) AttrMatch {
	return AttrMatch{Attr: "class", Pattern: regexp.MustCompile(expr)}
}

func hrefMatch(expr string) AttrMatch {
	return AttrMatch{Attr: "href", Pattern: regexp.MustCompile(expr)}
}

// 榜单页规则。
var (
	ContainerRule    = Rule{Name: "container", Selector: "div", Attrs: []AttrMatch{classMatch(`cli-parent`)}}
	TitleLinkRule    = Rule{Name: "title_link", Selector: "a", Attrs: []AttrMatch{classMatch(`ipc-title-link-wrapper`), hrefMatch(`/title/tt\d+`)}}
	TitleTextRule    = Rule{Name: "title_text", Selector: "h3", Attrs: []AttrMatch{classMatch(`ipc-title__text`)}}
	MetadataRule     = Rule{Name: "metadata", Selector: "div", Attrs: []AttrMatch{classMatch(`cli-title-metadata`)}}
	MetadataItemRule = Rule{Name: "metadata_item", Selector: "span", Attrs: []AttrMatch{classMatch(`cli-title-metadata-item`)}}
	RatingRule       = Rule{Name: "rating", Selector: `div[data-testid="ratingGroup--container"]`}
	RatingValueRule  = Rule{Name: "rating_value", Selector: "span"}
	PosterRule       = Rule{Name: "poster", Selector: "div", Attrs: []AttrMatch{classMatch(`cli-poster-container`)}}
	PosterImageRule  = Rule{Name: "poster_image", Selector: "img"}
)

// 详情页规则。genre 容器先主后备；cast 先表格后全页链接。
var (
	GenreContainerRule         = Rule{Name: "genre_container", Selector: "div", Attrs: []AttrMatch{classMatch(`ipc-chip-list--baseAlt`)}}
	GenreContainerFallbackRule = Rule{Name: "genre_container_fallback", Selector: `div[data-testid="genres"]`}
	GenreChipRule              = Rule{Name: "genre_chip", Selector: "a", Attrs: []AttrMatch{classMatch(`ipc-chip`)}}
	GenreLabelRule             = Rule{Name: "genre_label", Selector: "span", Attrs: []AttrMatch{classMatch(`ipc-chip__text`)}}

	CastTableRule = Rule{Name: "cast_table", Selector: "table.cast_list"}
	CastRowRule   = Rule{Name: "cast_row", Selector: "tr", Attrs: []AttrMatch{classMatch(`odd|even`)}}
	CastCellRule  = Rule{Name: "cast_cell", Selector: "td"}
	CastLinkRule  = Rule{Name: "cast_link", Selector: "a", Attrs: []AttrMatch{hrefMatch(`/name/nm\d+`)}}
	NameLinkRule  = Rule{Name: "name_link", Selector: "a", Attrs: []AttrMatch{hrefMatch(`/name/nm\d+`)}}
)

// Rules 列出全部规则，便于逐条对 fixture 做独立测试。
var Rules = []Rule{
	ContainerRule, TitleLinkRule, TitleTextRule, MetadataRule, MetadataItemRule,
	RatingRule, RatingValueRule, PosterRule, PosterImageRule,
	GenreContainerRule, GenreContainerFallbackRule, GenreChipRule, GenreLabelRule,
	CastTableRule, CastRowRule, CastCellRule, CastLinkRule, NameLinkRule,
}

// stripText 拼接所有后代文本节点，每段先去掉首尾空白（"1h 55m" 之类被拆开的片段会直接相连）。
func stripText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}

// orderedSet 是保序去重集合；limit>0 时最多保留 limit 个。
type orderedSet struct {
	limit int
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(limit int) *orderedSet {
	return &orderedSet{
		limit: limit,
		seen:  make(map[string]struct{}),
		items: []string{},
	}
}

// Add 追加 v；空串、重复或已满时返回 false。
func (s *orderedSet) Add(v string) bool {
	if v == "" || s.Full() {
		return false
	}
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet) Full() bool {
	return s.limit > 0 && len(s.items) >= s.limit
}

func (s *orderedSet) Items() []string { return s.items }
