package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/imdbtrend/internal/app/run"
	"github.com/John-Robertt/imdbtrend/internal/config"
	"github.com/John-Robertt/imdbtrend/internal/domain"
	"github.com/John-Robertt/imdbtrend/internal/logging"
	"github.com/John-Robertt/imdbtrend/internal/provider"
	"github.com/John-Robertt/imdbtrend/internal/provider/imdb"
)

type runFlags struct {
	out      string
	delay    time.Duration
	headless bool
	logLevel string
	snapshot bool
}

func newRunCommand(e env, configFlag *string) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [url]",
		Short: "渲染榜单页、逐条补全并写出 CSV/JSON",
		Long: `渲染榜单页、逐条补全并写出 CSV/JSON。

未给出 url 时从标准输入读取（交互终端会先打印提示）。
stdout 不是终端时，stdout 只输出一个 RunReport JSON；进度与日志走 stderr。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cli := config.CLIArgs{
				ConfigPath:   *configFlag,
				OutputDir:    f.out,
				OutputDirSet: flags.Changed("out"),
				ItemDelay:    f.delay,
				ItemDelaySet: flags.Changed("delay"),
				Headless:     f.headless,
				HeadlessSet:  flags.Changed("headless"),
				LogLevel:     f.logLevel,
				LogLevelSet:  flags.Changed("log-level"),
				Snapshot:     f.snapshot,
				SnapshotSet:  flags.Changed("snapshot"),
			}

			var listingURL string
			if len(args) == 1 {
				listingURL = args[0]
			} else {
				u, err := promptListingURL(cmd.InOrStdin(), promptWriter(cmd))
				if err != nil {
					return err
				}
				listingURL = u
			}
			return executeRun(cmd, e, cli, listingURL)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.out, "out", "", "输出目录（相对路径以当前目录为基准；默认 output）")
	fl.DurationVar(&f.delay, "delay", config.DefaultItemDelay, "条目之间的固定暂停")
	fl.BoolVar(&f.headless, "headless", true, "以 headless 模式启动 Chrome")
	fl.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "日志级别：trace|debug|info|warn|error|off")
	fl.BoolVar(&f.snapshot, "snapshot", false, "把抓到的原始 HTML 写到 <out>/html/")
	return cmd
}

// promptWriter 选择提示语的去向：stdout 是终端就写 stdout，否则写 stderr（不污染 JSON）。
func promptWriter(cmd *cobra.Command) io.Writer {
	if isTerminal(cmd.OutOrStdout()) {
		return cmd.OutOrStdout()
	}
	return cmd.ErrOrStderr()
}

func executeRun(cmd *cobra.Command, e env, cli config.CLIArgs, listingURL string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	interactive := isTerminal(stdout)

	cwd, err := e.getwd()
	if err != nil {
		return fmt.Errorf("读取当前目录失败：%w", err)
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		if !interactive {
			emitJSON(stdout, reportForError(listingURL, config.Code(err), err))
		}
		return err
	}

	logger := logging.New(eff.LogLevel, stderr)

	reg, err := provider.NewRegistry(imdb.Provider{BaseURL: e.detailBaseURL, CastLimit: eff.CastLimit})
	if err != nil {
		return fmt.Errorf("初始化 provider registry 失败：%w", err)
	}

	var obs run.Observer
	if w, ok := pickProgressWriter(stdout, stderr); ok {
		obs = newProgressUI(w)
	}

	rr, records, err := run.Execute(cmd.Context(), eff, listingURL, run.Deps{
		Registry: reg,
		Renderer: e.newRenderer(eff),
		Client:   e.client,
		Logger:   logger,
		Observer: obs,
	})

	if !interactive {
		emitJSON(stdout, rr)
	}

	switch {
	case errors.Is(err, run.ErrUnsupported):
		fmt.Fprintln(consoleWriter(interactive, stdout, stderr), "Unsupported site.")
		return nil
	case errors.Is(err, run.ErrNoResults):
		fmt.Fprintln(consoleWriter(interactive, stdout, stderr), "No results found.")
		return nil
	case err != nil:
		return err
	}

	w := consoleWriter(interactive, stdout, stderr)
	if interactive {
		fmt.Fprintln(w, renderSummary(rr))
	}
	fmt.Fprintf(w, "Saved %d items to:\n→ %s\n→ %s\n", len(records), rr.Outputs.CSV, rr.Outputs.JSON)
	fmt.Fprintf(w, "Posters saved in %s\n", rr.Outputs.PosterDir)
	return nil
}

// consoleWriter：stdout 是终端时面向人的消息写 stdout，否则写 stderr（stdout 只留 JSON）。
func consoleWriter(interactive bool, stdout, stderr io.Writer) io.Writer {
	if interactive {
		return stdout
	}
	return stderr
}

func emitJSON(w io.Writer, rr domain.RunReport) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(rr)
}

func reportForError(listingURL, code string, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		ListingURL: strings.TrimSpace(listingURL),
		StartedAt:  now,
		FinishedAt: now,
		ErrorCode:  code,
		ErrorMsg:   err.Error(),
	}
	rr.Finalize()
	return rr
}
