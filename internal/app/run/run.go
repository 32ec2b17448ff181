package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/John-Robertt/imdbtrend/internal/asset"
	"github.com/John-Robertt/imdbtrend/internal/config"
	"github.com/John-Robertt/imdbtrend/internal/domain"
	"github.com/John-Robertt/imdbtrend/internal/export"
	"github.com/John-Robertt/imdbtrend/internal/infra/fsx"
	"github.com/John-Robertt/imdbtrend/internal/infra/httpx"
	"github.com/John-Robertt/imdbtrend/internal/infra/snapshot"
	"github.com/John-Robertt/imdbtrend/internal/logging"
	"github.com/John-Robertt/imdbtrend/internal/provider"
	"github.com/John-Robertt/imdbtrend/internal/render"
)

var (
	// ErrUnsupported 表示榜单 URL 不属于任何已注册站点：不渲染、不输出，正常退出。
	ErrUnsupported = errors.New("不支持的榜单 URL")
	// ErrNoResults 表示榜单解析出 0 条记录：不写输出文件，正常退出。
	ErrNoResults = errors.New("榜单中没有找到任何条目")
)

// Deps 是一次 run 的外部协作者。Client/Logger/Observer/Sleep 可为空（使用默认实现）。
type Deps struct {
	Registry provider.Registry
	Renderer render.Renderer

	// Client 用于详情页与海报；为空时按配置构造（代理 + 请求超时）。
	Client   *http.Client
	Logger   hclog.Logger
	Observer Observer

	// Sleep 是条目间暂停；为空时使用可被 ctx 取消的 time.Timer。
	Sleep func(ctx context.Context, d time.Duration) error
}

// Execute 执行一次完整抓取：渲染榜单、解析、逐条补全、写出 CSV/JSON。
//
// 返回值：
// - RunReport 总是可用（即使 err 非空）
// - records 是最终写出（或本应写出）的记录，顺序与榜单一致
// - err 为 ErrUnsupported / ErrNoResults 时属于“正常结束”；其它错误（渲染、写出、取消）是致命错误
//
// 单条目/单字段的失败只降级为 report 中的 StageFailure，不中断流程。
func Execute(ctx context.Context, eff config.EffectiveConfig, listingURL string, deps Deps) (domain.RunReport, []domain.Record, error) {
	log := logging.OrNull(deps.Logger).Named("run")
	obs := deps.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	listingURL = strings.TrimSpace(listingURL)
	rr := domain.RunReport{
		RunID:      uuid.NewString(),
		ListingURL: listingURL,
		StartedAt:  time.Now().UTC(),
		Items:      []domain.ItemResult{},
	}
	finish := func(records []domain.Record, err error) (domain.RunReport, []domain.Record, error) {
		if err != nil {
			rr.ErrorCode = runErrorCode(err)
			rr.ErrorMsg = err.Error()
		}
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, records, err
	}

	// 域名检查在渲染之前：不支持的 URL 不启动浏览器。
	p, ok := deps.Registry.Match(listingURL)
	if !ok {
		log.Warn("榜单 URL 不受支持", "url", listingURL)
		return finish(nil, ErrUnsupported)
	}
	rr.Provider = p.Name()
	obs.OnStart(listingURL, p.Name())

	if deps.Renderer == nil {
		return finish(nil, errors.New("renderer 不能为空"))
	}

	client := deps.Client
	if client == nil {
		c, err := httpx.NewClient(eff.ProxyURL, eff.RequestTimeout)
		if err != nil {
			return finish(nil, &config.Error{Code: config.ErrCodeInvalid, Err: fmt.Errorf("proxy_url 无效：%w", err)})
		}
		client = c
	}

	store := snapshot.New(eff.SnapshotDir(), eff.SnapshotHTML)

	renderStarted := time.Now()
	html, err := deps.Renderer.Render(ctx, listingURL)
	if err != nil {
		log.Error("渲染榜单失败", "url", listingURL, "error", err)
		return finish(nil, &provider.Error{Provider: p.Name(), Stage: "render", Err: err})
	}
	obs.OnPhaseDone("render", map[string]any{"bytes": len(html)}, time.Since(renderStarted))

	if err := store.WriteListing([]byte(html)); err != nil {
		log.Warn("写入榜单快照失败", "error", err)
	}

	parseStarted := time.Now()
	records, err := p.ParseListing([]byte(html))
	if err != nil {
		log.Error("解析榜单失败", "error", err)
		return finish(nil, &provider.Error{Provider: p.Name(), Stage: "listing", Err: err})
	}
	obs.OnPhaseDone("parse", map[string]any{"items": len(records)}, time.Since(parseStarted))

	if len(records) == 0 {
		log.Info("榜单解析结果为空", "url", listingURL)
		return finish(nil, ErrNoResults)
	}

	e := enricher{
		provider: p,
		client:   client,
		posters:  asset.Fetcher{Client: client, Dir: eff.PosterDir, RelDir: filepath.Base(eff.PosterDir)},
		store:    store,
		log:      log,
	}

	enrichStarted := time.Now()
	total := len(records)
	for i := range records {
		if err := ctx.Err(); err != nil {
			return finish(nil, err)
		}
		obs.OnItemStart(i+1, total, records[i].Label())

		itemStarted := time.Now()
		res := e.enrich(ctx, i, &records[i])
		rr.Items = append(rr.Items, res)
		obs.OnItemDone(i+1, total, res, time.Since(itemStarted))

		if err := sleep(ctx, eff.ItemDelay); err != nil {
			return finish(nil, err)
		}
	}
	obs.OnPhaseDone("enrich", map[string]any{"items": total}, time.Since(enrichStarted))

	writeStarted := time.Now()
	if err := export.WriteCSV(eff.OutputDir, eff.CSVName, records); err != nil {
		log.Error("写入 CSV 失败", "error", err)
		return finish(records, &OutputError{Path: eff.CSVPath(), Err: err})
	}
	rr.Outputs.CSV = eff.CSVPath()
	if err := export.WriteJSON(eff.OutputDir, eff.JSONName, records); err != nil {
		log.Error("写入 JSON 失败", "error", err)
		return finish(records, &OutputError{Path: eff.JSONPath(), Err: err})
	}
	rr.Outputs.JSON = eff.JSONPath()
	rr.Outputs.PosterDir = eff.PosterDir
	obs.OnPhaseDone("write", map[string]any{
		"csv":  rr.Outputs.CSV,
		"json": rr.Outputs.JSON,
	}, time.Since(writeStarted))

	return finish(records, nil)
}

// OutputError 表示 CSV/JSON 落盘失败。
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("写入 %s 失败：%v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// runErrorCode 把整次 run 的终止原因映射为 report 中的 error_code。
func runErrorCode(err error) string {
	var pe *provider.Error
	var oe *OutputError
	switch {
	case errors.Is(err, ErrUnsupported):
		return domain.ErrCodeUnsupported
	case errors.Is(err, ErrNoResults):
		return domain.ErrCodeNoResults
	case errors.As(err, &oe):
		return domain.ErrCodeWriteFailed
	case errors.As(err, &pe) && pe.Stage == "render":
		return domain.ErrCodeRenderFailed
	case errors.As(err, &pe) && pe.Stage == "listing":
		return domain.ErrCodeParseFailed
	case config.Code(err) != "":
		return config.Code(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrCodeCanceled
	default:
		return domain.ErrCodeFetchFailed
	}
}

// enricher 对单条记录依次执行：海报下载、类型抓取、演员抓取。三个阶段互相独立。
type enricher struct {
	provider provider.Provider
	client   *http.Client
	posters  asset.Fetcher
	store    snapshot.Store
	log      hclog.Logger
}

func (e enricher) enrich(ctx context.Context, idx int, rec *domain.Record) domain.ItemResult {
	res := domain.ItemResult{
		Index:  idx,
		IMDbID: domain.Deref(rec.IMDbID),
		Title:  domain.Deref(rec.Title),
		Poster: domain.PosterNone,
	}
	log := e.log.With("index", idx, "imdb_id", res.IMDbID)

	pr := e.posters.FetchPoster(ctx, rec.Poster, domain.Deref(rec.Title), domain.Deref(rec.IMDbID))
	rec.Poster = pr.Value
	switch {
	case pr.Saved:
		res.Poster = domain.PosterFile
	case pr.Value != nil:
		res.Poster = domain.PosterRemote
	}
	if pr.Err != nil {
		log.Warn("海报下载失败，保留远程 URL", "stage", domain.StagePoster, "url", domain.Deref(pr.Value), "error", pr.Err)
		res.Failures = append(res.Failures, stageFailure(domain.StagePoster, e.provider.Name(), pr.Err))
	}

	id, ok := rec.ID()
	if !ok {
		res.Status = domain.StatusUnidentified
		return res
	}

	genres, html, err := e.provider.FetchGenres(ctx, id, e.client)
	e.snapshot(log, id, snapshot.KindDetail, html)
	if err != nil {
		log.Warn("抓取类型失败", "stage", domain.StageGenres, "error", err)
		res.Failures = append(res.Failures, stageFailure(domain.StageGenres, e.provider.Name(), err))
		genres = nil
	}
	rec.Genres = nonNil(genres)

	cast, html, err := e.provider.FetchCast(ctx, id, e.client)
	e.snapshot(log, id, snapshot.KindCredits, html)
	if err != nil {
		log.Warn("抓取演员失败", "stage", domain.StageCast, "error", err)
		res.Failures = append(res.Failures, stageFailure(domain.StageCast, e.provider.Name(), err))
		cast = nil
	}
	rec.Cast = nonNil(cast)

	res.Genres = len(rec.Genres)
	res.Cast = len(rec.Cast)
	res.Status = domain.StatusOK
	if len(res.Failures) > 0 {
		res.Status = domain.StatusPartial
	}
	return res
}

func (e enricher) snapshot(log hclog.Logger, id domain.TitleID, kind string, html []byte) {
	if len(html) == 0 {
		return
	}
	if err := e.store.WriteDetail(id, kind, html); err != nil {
		log.Debug("写入详情快照失败", "kind", kind, "error", err)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// stageFailure 把阶段错误映射为稳定的 error_code + 可读信息。
func stageFailure(stage, providerName string, err error) domain.StageFailure {
	f := domain.StageFailure{Stage: stage, ErrorCode: domain.ErrCodeFetchFailed}

	var hs *provider.HTTPStatusError
	var ps *asset.StatusError
	var we *asset.WriteError
	switch {
	case errors.As(err, &we), fsx.IsPathTypeConflict(err):
		f.ErrorCode = domain.ErrCodeWriteFailed
		f.ErrorMsg = err.Error()
	case errors.As(err, &ps):
		f.ErrorCode = domain.ErrCodeHTTPStatus
		f.ErrorMsg = fmt.Sprintf("海报返回 HTTP %d", ps.StatusCode)
	case errors.As(err, &hs):
		f.ErrorCode = domain.ErrCodeHTTPStatus
		f.ErrorMsg = humanizeFetchError(providerName, err)
	default:
		f.ErrorMsg = humanizeFetchError(providerName, err)
	}
	return f
}

func humanizeFetchError(providerName string, err error) string {
	if err == nil {
		return providerName + " 抓取失败"
	}

	var hs *provider.HTTPStatusError
	if errors.As(err, &hs) {
		switch hs.StatusCode {
		case 403, 429:
			return fmt.Sprintf("%s 返回 HTTP %d（可能触发反爬/限流）。建议调大 item_delay 或配置 proxy_url。", providerName, hs.StatusCode)
		case 404:
			return fmt.Sprintf("%s 返回 HTTP 404（条目可能不存在或已下架）。", providerName)
		default:
			return fmt.Sprintf("%s 返回 HTTP %d。", providerName, hs.StatusCode)
		}
	}

	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") {
		return fmt.Sprintf("%s 抓取超时。建议检查网络/代理，或调大 request_timeout。", providerName)
	}
	if strings.Contains(low, "tls") || strings.Contains(low, "handshake") {
		return fmt.Sprintf("%s 连接失败（TLS）。建议配置 proxy_url 或稍后重试。", providerName)
	}
	return fmt.Sprintf("%s 抓取失败：%v", providerName, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
