package imdb

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/imdbtrend/internal/domain"
)

// parseListing 为每个命中 ContainerRule 的节点产出一条记录（数量恒等于容器数）。
func parseListing(doc *goquery.Document) []domain.Record {
	blocks := ContainerRule.Find(doc.Selection)
	out := make([]domain.Record, 0, blocks.Length())
	blocks.Each(func(_ int, b *goquery.Selection) {
		out = append(out, parseBlock(b))
	})
	return out
}

// parseBlock 从单个容器提取骨架字段；任何子结构缺失都只留空字段。
func parseBlock(b *goquery.Selection) domain.Record {
	rec := domain.NewRecord()

	if link := TitleLinkRule.First(b); link.Length() > 0 {
		href, _ := link.Attr("href")
		if id, ok := domain.ExtractTitleID(href); ok {
			rec.IMDbID = domain.Ptr(string(id))
			rec.URL = domain.Ptr(id.CanonicalURL())
		}
		if h := TitleTextRule.First(link); h.Length() > 0 {
			rec.Title = domain.Ptr(stripText(h))
		}
	}

	// 元数据按位置取：年份、时长、分级；多余片段忽略。
	if meta := MetadataRule.First(b); meta.Length() > 0 {
		items := MetadataItemRule.Find(meta)
		fields := []**string{&rec.ReleaseYear, &rec.Duration, &rec.Certificate}
		items.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= len(fields) {
				return false
			}
			*fields[i] = domain.Ptr(stripText(s))
			return true
		})
	}

	if rating := RatingRule.First(b); rating.Length() > 0 {
		if v := RatingValueRule.First(rating); v.Length() > 0 {
			rec.Rating = domain.Ptr(stripText(v))
		}
	}

	if poster := PosterRule.First(b); poster.Length() > 0 {
		if img := PosterImageRule.First(poster); img.Length() > 0 {
			rec.Poster = domain.Ptr(posterSource(img))
		}
	}

	return rec
}

// posterSource 取 src，为空时回退 data-src（懒加载图片）。
func posterSource(img *goquery.Selection) string {
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" {
		src = strings.TrimSpace(img.AttrOr("data-src", ""))
	}
	return resolveURL(domain.BaseURL+"/", src)
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}
