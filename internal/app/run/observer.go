package run

import (
	"time"

	"github.com/John-Robertt/imdbtrend/internal/domain"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）
// - 事件都在执行 goroutine 上按顺序发出（流程是严格串行的）
type Observer interface {
	// OnStart 在选定 provider、开始渲染之前调用。
	OnStart(listingURL, providerName string)
	// OnPhaseDone 在阶段结束时调用：render / parse / enrich / write。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemStart 在某条目开始补全前调用（label 为标题，缺失时为标识符）。
	OnItemStart(idx, total int, label string)
	// OnItemDone 在某条目补全完成（暂停之前）调用。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
}

type nopObserver struct{}

func (nopObserver) OnStart(string, string)                                {}
func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration)     {}
func (nopObserver) OnItemStart(int, int, string)                          {}
func (nopObserver) OnItemDone(int, int, domain.ItemResult, time.Duration) {}
