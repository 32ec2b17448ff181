package domain

// Record 是一条榜单条目的结构化结果（listing 解析创建，enrich/poster 阶段补全，之后只读）。
//
// 约束：
// - 指针字段为 nil 表示“缺失”（JSON 输出 null，CSV 输出空单元格）
// - Genres/Cast 永远不是 nil：缺失时为空列表（JSON 输出 []）
// - Genres/Cast 去重且保持首次出现顺序
type Record struct {
	IMDbID      *string  `json:"imdb_id"`
	Title       *string  `json:"title"`
	URL         *string  `json:"url"`
	ReleaseYear *string  `json:"release_year"`
	Duration    *string  `json:"duration"`
	Certificate *string  `json:"certificate"`
	Rating      *string  `json:"rating"`
	Genres      []string `json:"genres"`
	Cast        []string `json:"cast"`
	Poster      *string  `json:"poster"`
}

// Columns 是 CSV/JSON 共用的字段顺序。
var Columns = []string{
	"imdb_id",
	"title",
	"url",
	"release_year",
	"duration",
	"certificate",
	"rating",
	"genres",
	"cast",
	"poster",
}

// NewRecord 返回一条空记录（列表字段已初始化）。
func NewRecord() Record {
	return Record{
		Genres: []string{},
		Cast:   []string{},
	}
}

// ID 返回标识符；缺失时 ok=false。
func (r Record) ID() (TitleID, bool) {
	if r.IMDbID == nil || *r.IMDbID == "" {
		return "", false
	}
	return TitleID(*r.IMDbID), true
}

// Label 用于日志/进度输出：优先标题，其次标识符。
func (r Record) Label() string {
	if s := Deref(r.Title); s != "" {
		return s
	}
	if s := Deref(r.IMDbID); s != "" {
		return s
	}
	return "<unknown>"
}

// Ptr 返回 s 的指针；空串视为缺失。
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref 把 nil 视为空串。
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
