package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusOK           = "ok"
	StatusPartial      = "partial"
	StatusUnidentified = "unidentified"
)

const (
	StagePoster = "poster"
	StageGenres = "genres"
	StageCast   = "cast"
)

const (
	PosterFile   = "file"
	PosterRemote = "remote"
	PosterNone   = "none"
)

const (
	ErrCodeFetchFailed  = "fetch_failed"
	ErrCodeHTTPStatus   = "http_status"
	ErrCodeParseFailed  = "parse_failed"
	ErrCodeWriteFailed  = "write_failed"
	ErrCodeRenderFailed = "render_failed"
	ErrCodeUnsupported  = "unsupported_url"
	ErrCodeNoResults    = "no_results"
	ErrCodeCanceled     = "canceled"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	RunID      string `json:"run_id"`
	ListingURL string `json:"listing_url"`
	Provider   string `json:"provider"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// ErrorCode/ErrorMsg 仅在整次 run 提前结束时非空。
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`

	Summary ReportSummary `json:"summary"`
	Outputs ReportOutputs `json:"outputs"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Items         int `json:"items"`
	OK            int `json:"ok"`
	Partial       int `json:"partial"`
	Unidentified  int `json:"unidentified"`
	WithGenres    int `json:"with_genres"`
	WithCast      int `json:"with_cast"`
	PostersSaved  int `json:"posters_saved"`
	PostersRemote int `json:"posters_remote"`
}

// ReportOutputs 记录落盘位置；未写出时为空串。
type ReportOutputs struct {
	CSV       string `json:"csv"`
	JSON      string `json:"json"`
	PosterDir string `json:"poster_dir"`
}

type ItemResult struct {
	Index  int    `json:"index"`
	IMDbID string `json:"imdb_id"`
	Title  string `json:"title"`
	Status string `json:"status"`

	Genres int    `json:"genres"`
	Cast   int    `json:"cast"`
	Poster string `json:"poster"`

	Failures []StageFailure `json:"failures"`
}

// StageFailure 描述某一字段的降级原因（字段已经回落到默认值）。
type StageFailure struct {
	Stage     string `json:"stage"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) items 按榜单顺序（Index）稳定排序
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Items == nil {
		r.Items = []ItemResult{}
	}
	sort.SliceStable(r.Items, func(i, j int) bool {
		return r.Items[i].Index < r.Items[j].Index
	})

	var s ReportSummary
	for _, it := range r.Items {
		s.Items++
		switch it.Status {
		case StatusOK:
			s.OK++
		case StatusPartial:
			s.Partial++
		case StatusUnidentified:
			s.Unidentified++
		}
		if it.Genres > 0 {
			s.WithGenres++
		}
		if it.Cast > 0 {
			s.WithCast++
		}
		switch it.Poster {
		case PosterFile:
			s.PostersSaved++
		case PosterRemote:
			s.PostersRemote++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性：nil 列表统一输出 []。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Items == nil {
		a.Items = []ItemResult{}
	}
	for i := range a.Items {
		if a.Items[i].Failures == nil {
			a.Items[i].Failures = []StageFailure{}
		}
	}
	return json.Marshal(a)
}
