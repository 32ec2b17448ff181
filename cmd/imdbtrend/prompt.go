package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptText 是交互读取榜单 URL 时的提示语。
const PromptText = "Enter IMDb trending URL: "

// promptListingURL 打印提示并读取一行（去掉首尾空白）。
// 空输入原样返回空串，由后续的站点匹配当作不支持的 URL 处理。
func promptListingURL(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, PromptText)

	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("读取榜单 URL 失败：%w", err)
	}
	return strings.TrimSpace(line), nil
}
