// Package asset 下载条目海报并落盘。
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/imdbtrend/internal/infra/fsx"
)

// Ext 是海报文件固定扩展名（不检查真实图片格式）。
const Ext = ".jpg"

// SafeName 生成海报文件名主干：优先标题，其次标识符，都缺失时为 "poster"；
// [A-Za-z0-9] 以外的每个字符（按 rune 计）都替换为 '_'。
func SafeName(title, id string) string {
	base := title
	if base == "" {
		base = id
	}
	if base == "" {
		base = "poster"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// StatusError 表示海报响应不是 200。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("海报下载返回 HTTP %d", e.StatusCode)
}

// WriteError 表示海报已下载但落盘失败。
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("写入海报失败：%s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result 是一次海报抓取的结果。
//
// Value 是写回 Record.Poster 的值：
// - 成功：相对路径 <dirName>/<safe>.jpg
// - 失败：原始远程 URL（Err 非空）
// - 无 URL：nil
type Result struct {
	Value *string
	Saved bool
	Path  string
	Err   error
}

// Fetcher 把海报存到 Dir（绝对路径），记录中使用 RelDir 作为前缀。
//
// 约束：
// - 只有 HTTP 状态恰为 200 才写文件；其它 2xx 也视为失败
// - 同名文件直接覆盖（标题相同的条目后写者胜）
// - 不重试
type Fetcher struct {
	Client *http.Client
	Dir    string
	RelDir string
}

// FetchPoster 下载 posterURL 指向的图片；失败不会返回 error，而是把原 URL 留在 Result.Value 中。
func (f Fetcher) FetchPoster(ctx context.Context, posterURL *string, title, id string) Result {
	if posterURL == nil || strings.TrimSpace(*posterURL) == "" {
		return Result{}
	}
	orig := *posterURL
	fail := func(err error) Result {
		return Result{Value: &orig, Err: err}
	}

	b, err := f.download(ctx, orig)
	if err != nil {
		return fail(err)
	}

	name := SafeName(title, id) + Ext
	if err := fsx.WriteFileAtomic(f.Dir, name, b); err != nil {
		return fail(&WriteError{Path: filepath.Join(f.Dir, name), Err: err})
	}

	rel := filepath.ToSlash(filepath.Join(f.relDir(), name))
	return Result{
		Value: &rel,
		Saved: true,
		Path:  filepath.Join(f.Dir, name),
	}
}

func (f Fetcher) relDir() string {
	if s := strings.TrimSpace(f.RelDir); s != "" {
		return s
	}
	return filepath.Base(f.Dir)
}

func (f Fetcher) download(ctx context.Context, u string) ([]byte, error) {
	if f.Client == nil {
		return nil, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
