package imdb

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		t.Fatalf("解析 HTML 失败：%v", err)
	}
	return doc
}

func TestParseGenres_Primary(t *testing.T) {
	got := parseGenres(mustDoc(t, readFixture(t, "title.html")))
	want := []string{"Comedy", "Drama"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("genres 不符合预期：got=%v want=%v", got, want)
	}
}

func TestParseGenres_Fallback(t *testing.T) {
	got := parseGenres(mustDoc(t, readFixture(t, "title_fallback.html")))
	want := []string{"Action", "History"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("genres 不符合预期：got=%v want=%v", got, want)
	}
}

func TestParseGenres_NoContainer(t *testing.T) {
	got := parseGenres(mustDoc(t, []byte("<html><body></body></html>")))
	if got == nil || len(got) != 0 {
		t.Fatalf("期望空列表（非 nil），实际=%#v", got)
	}
}

func TestParseCast_TableCappedAndDeduped(t *testing.T) {
	got, fallback := parseCast(mustDoc(t, readFixture(t, "fullcredits.html")), MaxCast)
	if fallback {
		t.Fatalf("表格有数据时不应回退")
	}
	want := []string{
		"Jeremy Allen White", "Ebon Moss-Bachrach", "Ayo Edebiri", "Lionel Boyce", "Liza Colón-Zayas",
		"Abby Elliott", "Edwin Lee Gibson", "Matty Matheson", "Oliver Platt", "Molly Gordon",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cast 不符合预期：\ngot=%v\nwant=%v", got, want)
	}
}

func TestParseCast_LowerLimit(t *testing.T) {
	got, _ := parseCast(mustDoc(t, readFixture(t, "fullcredits.html")), 3)
	want := []string{"Jeremy Allen White", "Ebon Moss-Bachrach", "Ayo Edebiri"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cast 不符合预期：got=%v want=%v", got, want)
	}
}

func TestParseCast_EmptyTableFallsBackToNameLinks(t *testing.T) {
	got, fallback := parseCast(mustDoc(t, readFixture(t, "fullcredits_fallback.html")), MaxCast)
	if !fallback {
		t.Fatalf("表格无数据行时应回退到人物链接")
	}
	want := []string{"Hiroyuki Sanada", "Cosmo Jarvis", "Anna Sawai"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cast 不符合预期：got=%v want=%v", got, want)
	}
}

func TestParseCast_FallbackCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, `<a href="/name/nm%07d/">Person %c</a>`, i+1, 'A'+i)
	}
	b.WriteString("</body></html>")

	got, fallback := parseCast(mustDoc(t, []byte(b.String())), MaxCast)
	if !fallback {
		t.Fatalf("无表格时应回退")
	}
	if len(got) != MaxCast {
		t.Fatalf("回退结果应截断到 %d，实际=%d：%v", MaxCast, len(got), got)
	}
	if got[0] != "Person A" || got[9] != "Person J" {
		t.Fatalf("回退结果顺序不符合预期：%v", got)
	}
}

func TestParseCast_NothingFound(t *testing.T) {
	got, _ := parseCast(mustDoc(t, []byte("<html><body><a href='/title/tt1/'>x y</a></body></html>")), MaxCast)
	if got == nil || len(got) != 0 {
		t.Fatalf("期望空列表（非 nil），实际=%#v", got)
	}
}

func TestStripText_ConcatenatesTrimmedNodes(t *testing.T) {
	doc := mustDoc(t, []byte("<div id='x'>  1h <span> 55m </span>\n</div>"))
	if got := stripText(doc.Find("#x")); got != "1h55m" {
		t.Fatalf("stripText=%q", got)
	}
}

func TestOrderedSet(t *testing.T) {
	s := newOrderedSet(2)
	s.Add("a")
	s.Add("")
	s.Add("a")
	s.Add("b")
	if s.Add("c") {
		t.Fatalf("已满时 Add 应返回 false")
	}
	if !reflect.DeepEqual(s.Items(), []string{"a", "b"}) {
		t.Fatalf("items=%v", s.Items())
	}
}
