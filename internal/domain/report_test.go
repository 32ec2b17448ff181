package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_OrderAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		ListingURL: "https://www.imdb.com/chart/moviemeter/",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Index: 2, IMDbID: "tt3", Status: StatusPartial, Poster: PosterRemote, Cast: 3},
			{Index: 0, IMDbID: "tt1", Status: StatusOK, Genres: 2, Cast: 10, Poster: PosterFile},
			{Index: 1, Status: StatusUnidentified, Poster: PosterNone},
		},
	}

	r.Finalize()

	if r.Items[0].Index != 0 || r.Items[1].Index != 1 || r.Items[2].Index != 2 {
		t.Fatalf("items 未按榜单顺序排列：%+v", r.Items)
	}
	want := ReportSummary{Items: 3, OK: 1, Partial: 1, Unidentified: 1, WithGenres: 1, WithCast: 2, PostersSaved: 1, PostersRemote: 1}
	if r.Summary != want {
		t.Fatalf("summary 统计不正确：got=%+v want=%+v", r.Summary, want)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte(`"started_at":"2026-02-09T02:00:00Z"`)) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
	if !bytes.Contains(b, []byte(`"failures":[]`)) {
		t.Fatalf("nil failures 应输出 []：%s", string(b))
	}
}

func TestRunReport_MarshalJSON_NilItems(t *testing.T) {
	b, err := json.Marshal(RunReport{})
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte(`"items":[]`)) {
		t.Fatalf("nil items 应输出 []：%s", string(b))
	}
}
