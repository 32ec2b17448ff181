package imdb

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// parseGenres 在类型标签容器中收集去重后的标签文本（文档顺序，不设上限）。
// 主容器缺失时回退 data-testid="genres"。
func parseGenres(doc *goquery.Document) []string {
	set := newOrderedSet(0)

	c := GenreContainerRule.First(doc.Selection)
	if c.Length() == 0 {
		c = GenreContainerFallbackRule.First(doc.Selection)
	}
	if c.Length() == 0 {
		return set.Items()
	}

	GenreChipRule.Find(c).Each(func(_ int, chip *goquery.Selection) {
		if label := GenreLabelRule.First(chip); label.Length() > 0 {
			set.Add(stripText(label))
		}
	})
	return set.Items()
}

// parseCast 先扫 cast 表格；表格结果为空（不论表格缺失还是没有可用行）才回退全页人物链接。
func parseCast(doc *goquery.Document, limit int) (cast []string, fallback bool) {
	cast = parseCastTable(doc, limit)
	if len(cast) > 0 {
		return cast, false
	}
	return parseNameLinks(doc, limit), true
}

// parseCastTable 取每个数据行第二列中的人物链接文本。
func parseCastTable(doc *goquery.Document, limit int) []string {
	set := newOrderedSet(limit)

	table := CastTableRule.First(doc.Selection)
	if table.Length() == 0 {
		return set.Items()
	}

	CastRowRule.Find(table).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := CastCellRule.Find(row)
		if cells.Length() < 2 {
			return true
		}
		if link := CastLinkRule.First(cells.Eq(1)); link.Length() > 0 {
			set.Add(stripText(link))
		}
		return !set.Full()
	})
	return set.Items()
}

// parseNameLinks 扫描全页人物链接；长度不超过 1 个字符的文本（图标、首字母）忽略。
func parseNameLinks(doc *goquery.Document, limit int) []string {
	set := newOrderedSet(limit)

	NameLinkRule.Find(doc.Selection).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		name := stripText(a)
		if utf8.RuneCountInString(name) <= 1 {
			return true
		}
		set.Add(name)
		return !set.Full()
	})
	return set.Items()
}
