package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/John-Robertt/imdbtrend/internal/domain"
)

type stubProvider struct {
	name   string
	marker string
}

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) Supports(listingURL string) bool {
	return strings.Contains(listingURL, p.marker)
}

func (p stubProvider) ParseListing(html []byte) ([]domain.Record, error) { return nil, nil }

func (p stubProvider) FetchGenres(ctx context.Context, id domain.TitleID, c *http.Client) ([]string, []byte, error) {
	return nil, nil, nil
}

func (p stubProvider) FetchCast(ctx context.Context, id domain.TitleID, c *http.Client) ([]string, []byte, error) {
	return nil, nil, nil
}

func TestRegistry_MatchInOrder(t *testing.T) {
	reg, err := NewRegistry(
		stubProvider{name: "IMDb", marker: "imdb.com"},
		stubProvider{name: "any", marker: "."},
	)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	p, ok := reg.Match("https://www.imdb.com/chart/moviemeter/")
	if !ok || p.Name() != "IMDb" {
		t.Fatalf("期望匹配 IMDb，实际 ok=%v p=%v", ok, p)
	}
	if _, ok := reg.Match("nothing"); ok {
		t.Fatalf("不期望匹配")
	}
}

func TestRegistry_Rejects(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("期望拒绝 nil provider")
	}
	if _, err := NewRegistry(stubProvider{name: " "}); err == nil {
		t.Fatalf("期望拒绝空 name")
	}
	if _, err := NewRegistry(stubProvider{name: "a"}, stubProvider{name: "A"}); err == nil {
		t.Fatalf("期望拒绝重复 provider")
	}
}

func TestFetchHTML_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte("<html/>"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	b, err := FetchHTML(context.Background(), srv.Client(), srv.URL+"/ok")
	if err != nil || string(b) != "<html/>" {
		t.Fatalf("期望成功，实际 b=%q err=%v", string(b), err)
	}

	_, err = FetchHTML(context.Background(), srv.Client(), srv.URL+"/blocked")
	var hs *HTTPStatusError
	if !errors.As(err, &hs) || hs.StatusCode != http.StatusForbidden {
		t.Fatalf("期望 HTTPStatusError(403)，实际：%v", err)
	}

	if _, err := FetchHTML(context.Background(), nil, srv.URL); err == nil {
		t.Fatalf("nil client 期望错误")
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := &HTTPStatusError{StatusCode: 500}
	err := error(&Error{Provider: "imdb", Stage: "cast", Err: inner})

	var hs *HTTPStatusError
	if !errors.As(err, &hs) {
		t.Fatalf("期望能 Unwrap 出 HTTPStatusError")
	}
	if !strings.Contains(err.Error(), "stage=cast") {
		t.Fatalf("错误信息缺少 stage：%q", err.Error())
	}
}
