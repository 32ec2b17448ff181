package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	if err := WriteFileAtomic(dir, "a.csv", []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// 覆盖写入。
	if err := WriteFileAtomic(dir, "a.csv", []byte("world")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "world" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.csv.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomic(dir, "a.json", []byte("{}")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("失败后目录应为空，实际 %d 项", len(entries))
	}
}

func TestWriteFileAtomic_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "a.jpg"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomic(dir, "a.jpg", []byte("x"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestEnsureDir_FileConflict(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "output")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	if err := EnsureDir(p); !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%v", err)
	}
	if err := EnsureDir(filepath.Join(dir, "x", "y")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
}
