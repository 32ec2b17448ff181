// Package export 把记录集合写成表格文件（CSV）与结构化文件（JSON）。
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"

	"github.com/John-Robertt/imdbtrend/internal/domain"
	"github.com/John-Robertt/imdbtrend/internal/infra/fsx"
)

// ErrEmpty 表示没有任何记录可写；调用方据此跳过输出。
var ErrEmpty = errors.New("没有可写出的记录")

// WriteCSV 在 dir 下原子写入 name。
//
// 规则：
// - 首行是 domain.Columns
// - 缺失字段写空单元格
// - genres/cast 写成 JSON 数组文本（例如 ["Drama","Thriller"]），空列表为 []
func WriteCSV(dir, name string, records []domain.Record) error {
	b, err := EncodeCSV(records)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(dir, name, b)
}

// WriteJSON 在 dir 下原子写入 name：对象数组，4 空格缩进，非 ASCII 字符原样输出。
func WriteJSON(dir, name string, records []domain.Record) error {
	b, err := EncodeJSON(records)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(dir, name, b)
}

func EncodeCSV(records []domain.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(domain.Columns); err != nil {
		return nil, err
	}
	for _, r := range records {
		row, err := csvRow(r)
		if err != nil {
			return nil, err
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRow(r domain.Record) ([]string, error) {
	genres, err := listText(r.Genres)
	if err != nil {
		return nil, err
	}
	cast, err := listText(r.Cast)
	if err != nil {
		return nil, err
	}
	return []string{
		domain.Deref(r.IMDbID),
		domain.Deref(r.Title),
		domain.Deref(r.URL),
		domain.Deref(r.ReleaseYear),
		domain.Deref(r.Duration),
		domain.Deref(r.Certificate),
		domain.Deref(r.Rating),
		genres,
		cast,
		domain.Deref(r.Poster),
	}, nil
}

func listText(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := marshalNoEscape(items, "")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func EncodeJSON(records []domain.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	out := make([]domain.Record, len(records))
	for i, r := range records {
		if r.Genres == nil {
			r.Genres = []string{}
		}
		if r.Cast == nil {
			r.Cast = []string{}
		}
		out[i] = r
	}
	return marshalNoEscape(out, "    ")
}

// marshalNoEscape 与 json.Marshal/MarshalIndent 相同，但不转义 <>&，且去掉末尾换行。
func marshalNoEscape(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
