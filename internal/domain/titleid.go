package domain

import (
	"regexp"
)

// TitleID 是条目的唯一标识（形如 tt0111161）。
type TitleID string

// BaseURL 是 canonical URL 的站点根。
const BaseURL = "https://www.imdb.com"

var (
	titleHrefRE = regexp.MustCompile(`/title/(tt\d+)`)
	titleIDRE   = regexp.MustCompile(`^tt\d+$`)
)

// ExtractTitleID 从链接中提取标识符（匹配 /title/tt\d+，允许相对/绝对 URL 与查询串）。
// 不匹配时 ok=false。
func ExtractTitleID(href string) (TitleID, bool) {
	m := titleHrefRE.FindStringSubmatch(href)
	if len(m) < 2 {
		return "", false
	}
	return TitleID(m[1]), true
}

// ParseTitleID 校验一个已经是裸标识符的字符串。
func ParseTitleID(s string) (TitleID, bool) {
	if !titleIDRE.MatchString(s) {
		return "", false
	}
	return TitleID(s), true
}

// CanonicalURL 是写入 Record.URL 的规范地址（无尾部斜杠）。
func (id TitleID) CanonicalURL() string {
	return BaseURL + "/title/" + string(id)
}
