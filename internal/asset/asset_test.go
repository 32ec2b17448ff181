package asset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/imdbtrend/internal/domain"
)

func TestSafeName(t *testing.T) {
	cases := []struct {
		title, id, want string
	}{
		{"The Bear", "tt14452776", "The_Bear"},
		{"Shōgun", "tt2788316", "Sh_gun"},
		{"", "tt2788316", "tt2788316"},
		{"", "", "poster"},
		{"A/B: C?", "", "A_B__C_"},
		{"斗罗大陆", "", "____"},
	}
	for _, tc := range cases {
		if got := SafeName(tc.title, tc.id); got != tc.want {
			t.Fatalf("SafeName(%q,%q)=%q want=%q", tc.title, tc.id, got, tc.want)
		}
	}
}

func newPosterServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("JPEGDATA"))
	})
	mux.HandleFunc("/accepted.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("x"))
	})
	mux.HandleFunc("/missing.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPoster_Saved(t *testing.T) {
	srv := newPosterServer(t)
	dir := filepath.Join(t.TempDir(), "posters_show")
	f := Fetcher{Client: srv.Client(), Dir: dir, RelDir: "posters_show"}

	res := f.FetchPoster(context.Background(), domain.Ptr(srv.URL+"/ok.jpg"), "The Bear", "tt14452776")
	if res.Err != nil || !res.Saved {
		t.Fatalf("期望保存成功：%+v", res)
	}
	if got := domain.Deref(res.Value); got != "posters_show/The_Bear.jpg" {
		t.Fatalf("poster 字段不符合预期：%q", got)
	}
	b, err := os.ReadFile(filepath.Join(dir, "The_Bear.jpg"))
	if err != nil {
		t.Fatalf("读取海报失败：%v", err)
	}
	if string(b) != "JPEGDATA" {
		t.Fatalf("海报内容不符合预期：%q", b)
	}
}

func TestFetchPoster_OverwritesSameName(t *testing.T) {
	srv := newPosterServer(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "poster.jpg"), []byte("old"), 0o644); err != nil {
		t.Fatalf("预置文件失败：%v", err)
	}
	f := Fetcher{Client: srv.Client(), Dir: dir}

	res := f.FetchPoster(context.Background(), domain.Ptr(srv.URL+"/ok.jpg"), "", "")
	if !res.Saved {
		t.Fatalf("期望保存成功：%+v", res)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "poster.jpg"))
	if string(b) != "JPEGDATA" {
		t.Fatalf("同名文件应被覆盖，实际=%q", b)
	}
}

func TestFetchPoster_NonOKKeepsURL(t *testing.T) {
	srv := newPosterServer(t)
	dir := t.TempDir()
	f := Fetcher{Client: srv.Client(), Dir: dir, RelDir: "posters_show"}

	for _, path := range []string{"/missing.jpg", "/accepted.jpg"} {
		u := srv.URL + path
		res := f.FetchPoster(context.Background(), domain.Ptr(u), "X", "tt1")
		if res.Saved {
			t.Fatalf("%s 不应保存", path)
		}
		if got := domain.Deref(res.Value); got != u {
			t.Fatalf("失败时应保留原 URL：got=%q want=%q", got, u)
		}
		var se *StatusError
		if !errors.As(res.Err, &se) {
			t.Fatalf("期望 *StatusError，实际=%v", res.Err)
		}
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("失败时不应写任何文件：%v", entries)
	}
}

func TestFetchPoster_NoURL(t *testing.T) {
	f := Fetcher{Client: http.DefaultClient, Dir: t.TempDir()}
	res := f.FetchPoster(context.Background(), nil, "X", "tt1")
	if res.Value != nil || res.Err != nil || res.Saved {
		t.Fatalf("无 URL 时应返回零值：%+v", res)
	}
}

func TestFetchPoster_TransportError(t *testing.T) {
	srv := newPosterServer(t)
	u := srv.URL + "/ok.jpg"
	srv.Close()

	f := Fetcher{Client: &http.Client{}, Dir: t.TempDir()}
	res := f.FetchPoster(context.Background(), domain.Ptr(u), "X", "")
	if res.Err == nil || domain.Deref(res.Value) != u {
		t.Fatalf("连接失败时应保留原 URL 并返回错误：%+v", res)
	}
}

func TestFetchPoster_WriteConflict(t *testing.T) {
	srv := newPosterServer(t)
	dir := t.TempDir()
	// 目标名已被目录占用：不能覆盖。
	if err := os.Mkdir(filepath.Join(dir, "X.jpg"), 0o755); err != nil {
		t.Fatalf("预置目录失败：%v", err)
	}
	f := Fetcher{Client: srv.Client(), Dir: dir}

	u := srv.URL + "/ok.jpg"
	res := f.FetchPoster(context.Background(), domain.Ptr(u), "X", "")
	var we *WriteError
	if !errors.As(res.Err, &we) {
		t.Fatalf("期望 *WriteError，实际=%v", res.Err)
	}
	if domain.Deref(res.Value) != u {
		t.Fatalf("写入失败时应保留原 URL：%q", domain.Deref(res.Value))
	}
}
