package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF 按页提取纯文本，空白页跳过
// 每页格式为 "[Página N]\n<text>\n\n"，N 从 1 开始
// 解析器遇到损坏的文件会 panic，这里转成错误
func PDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		pages[i-1] = content
	}

	return formatPages(pages), nil
}

// formatPages 拼接带页码标签的文本
func formatPages(pages []string) string {
	var sb strings.Builder
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&sb, "[Página %d]\n%s\n\n", i+1, text)
	}
	return sb.String()
}
