package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// 通过可替换的函数指针，让测试能稳定模拟 rename 失败。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径类型冲突（例如期望目录但实际是文件）。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// EnsureDir 确保 dir 存在且是目录；同名文件返回 PathTypeConflictError。
func EnsureDir(dir string) error {
	fi, err := os.Stat(dir)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		return &PathTypeConflictError{Path: dir, Want: "dir", Got: "file"}
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteFileAtomic 在 dir 下原子写入 name（同目录临时文件 + rename），目标已存在则覆盖。
//
// - 临时文件必须与目标文件在同目录，以保证 rename 的原子性
// - 对临时文件做 Sync；目录 Sync 采用 best-effort
// - 目标是目录时返回 PathTypeConflictError（不做递归删除）
func WriteFileAtomic(dir, name string, data []byte) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)
	if fi, err := os.Lstat(dst); err == nil && fi.IsDir() {
		return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
	}

	// 临时文件前缀带 '.'，失败时也不会被误认为产物。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := renameFunc(tmpName, dst); err != nil {
		return err
	}

	_ = syncDirBestEffort(dir)
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
