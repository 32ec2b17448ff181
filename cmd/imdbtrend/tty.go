package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pickProgressWriter：进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
func pickProgressWriter(stdout, stderr io.Writer) (io.Writer, bool) {
	if isTerminal(stderr) {
		return stderr, true
	}
	// 仅重定向了 stderr 时 stdout 仍是终端：退化输出到 stdout。
	if isTerminal(stdout) {
		return stdout, true
	}
	return nil, false
}
