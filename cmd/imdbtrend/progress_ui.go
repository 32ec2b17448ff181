package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/John-Robertt/imdbtrend/internal/app/run"
	"github.com/John-Robertt/imdbtrend/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的逐行进度输出。
//
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
type progressUI struct {
	w         io.Writer
	startedAt time.Time

	ok      int
	partial int
	unident int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(listingURL, providerName string) {
	now := time.Now()
	p.startedAt = now
	fmt.Fprintf(p.w, "[%s] imdbtrend run\n", now.Format("15:04:05"))
	fmt.Fprintf(p.w, "  url: %s\n", truncate(listingURL, 120))
	fmt.Fprintf(p.w, "  provider: %s\n\n", providerName)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	switch name {
	case "render":
		fmt.Fprintf(p.w, "渲染: bytes=%d (%s)\n", intField(fields, "bytes"), formatShortDuration(dur))
	case "parse":
		fmt.Fprintf(p.w, "解析: items=%d (%s)\n\n", intField(fields, "items"), formatShortDuration(dur))
	case "enrich":
		fmt.Fprintf(p.w, "\n补全: items=%d ok=%d partial=%d unidentified=%d elapsed=%s\n",
			intField(fields, "items"), p.ok, p.partial, p.unident, formatElapsed(dur),
		)
	case "write":
		fmt.Fprintf(p.w, "写出: %s, %s (%s)\n", stringField(fields, "csv"), stringField(fields, "json"), formatShortDuration(dur))
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnItemStart(idx, total int, label string) {
	fmt.Fprintf(p.w, "[%d/%d] Fetching details of: %s\n", idx, total, truncate(label, 100))
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	var status string
	switch res.Status {
	case domain.StatusOK:
		p.ok++
		status = "OK"
	case domain.StatusPartial:
		p.partial++
		status = "PARTIAL"
	case domain.StatusUnidentified:
		p.unident++
		status = "NO-ID"
	default:
		status = strings.ToUpper(res.Status)
	}

	line := fmt.Sprintf("[%d/%d] %s genres=%d cast=%d poster=%s", idx, total, status, res.Genres, res.Cast, res.Poster)
	if note := formatFailures(res.Failures); note != "" {
		line += " " + note
	}
	fmt.Fprintf(p.w, "%s (%s)\n", line, formatShortDuration(dur))
}

// formatFailures 把阶段失败压成一段：stage:code;stage:code。
func formatFailures(fs []domain.StageFailure) string {
	if len(fs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, f.Stage+":"+f.ErrorCode)
	}
	return "failed=" + strings.Join(parts, ";")
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}

func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	s, _ := fields[key].(string)
	return s
}
