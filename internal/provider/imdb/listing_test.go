package imdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/imdbtrend/internal/domain"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("读取 fixture 失败：%v", err)
	}
	return b
}

func TestParseListing_Fixture(t *testing.T) {
	recs, err := Provider{}.ParseListing(readFixture(t, "listing.html"))
	if err != nil {
		t.Fatalf("ParseListing 失败：%v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("期望 4 条记录（与容器数一致），实际=%d", len(recs))
	}

	type want struct {
		id, title, url, year, dur, cert, rating, poster string
	}
	cases := []want{
		{
			id: "tt14452776", title: "The Bear", url: "https://www.imdb.com/title/tt14452776",
			year: "2022–", dur: "30m", cert: "TV-MA", rating: "8.5",
			poster: "https://m.media-amazon.com/images/M/bear.jpg",
		},
		{
			id: "tt2788316", title: "Shōgun", url: "https://www.imdb.com/title/tt2788316",
			year: "2024", dur: "1h0m",
			poster: "https://m.media-amazon.com/images/M/shogun.jpg",
		},
		{rating: "7.1"},
		{},
	}
	for i, w := range cases {
		r := recs[i]
		check := func(field string, got *string, exp string) {
			t.Helper()
			if domain.Deref(got) != exp {
				t.Fatalf("记录 %d 字段 %s 不符合预期：got=%q want=%q", i, field, domain.Deref(got), exp)
			}
			if exp == "" && got != nil {
				t.Fatalf("记录 %d 字段 %s 应为缺失（nil），实际=%q", i, field, *got)
			}
		}
		check("imdb_id", r.IMDbID, w.id)
		check("title", r.Title, w.title)
		check("url", r.URL, w.url)
		check("release_year", r.ReleaseYear, w.year)
		check("duration", r.Duration, w.dur)
		check("certificate", r.Certificate, w.cert)
		check("rating", r.Rating, w.rating)
		check("poster", r.Poster, w.poster)
		if r.Genres == nil || r.Cast == nil || len(r.Genres) != 0 || len(r.Cast) != 0 {
			t.Fatalf("记录 %d 的 genres/cast 应为空列表：%#v %#v", i, r.Genres, r.Cast)
		}
	}
}

func TestParseListing_NoContainers(t *testing.T) {
	recs, err := Provider{}.ParseListing([]byte("<html><body><p>nothing</p></body></html>"))
	if err != nil {
		t.Fatalf("ParseListing 失败：%v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("期望 0 条记录，实际=%d", len(recs))
	}
}

func TestParseListing_TitleLinkNeedsBothClassAndHref(t *testing.T) {
	html := `<div class="cli-parent">
  <a class="other" href="/title/tt0000001/"><h3 class="ipc-title__text">Wrong class</h3></a>
  <a class="ipc-title-link-wrapper" href="/title/tt0000002/"><h3 class="ipc-title__text">Right</h3></a>
</div>`
	recs, err := Provider{}.ParseListing([]byte(html))
	if err != nil {
		t.Fatalf("ParseListing 失败：%v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("期望 1 条记录，实际=%d", len(recs))
	}
	if got := domain.Deref(recs[0].IMDbID); got != "tt0000002" {
		t.Fatalf("imdb_id 不符合预期：%q", got)
	}
	if got := domain.Deref(recs[0].Title); got != "Right" {
		t.Fatalf("title 不符合预期：%q", got)
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		href string
		want string
	}{
		{"", ""},
		{"https://a.example/x.jpg", "https://a.example/x.jpg"},
		{"//cdn.example/y.jpg", "https://cdn.example/y.jpg"},
		{"/images/z.jpg", "https://www.imdb.com/images/z.jpg"},
	}
	for _, tc := range cases {
		if got := resolveURL(domain.BaseURL+"/", tc.href); got != tc.want {
			t.Fatalf("resolveURL(%q)=%q want=%q", tc.href, got, tc.want)
		}
	}
}
