package rag

import (
	"io"
	"strings"
)

// FileKind 上传文件的分析类别
type FileKind string

const (
	KindPDF          FileKind = "pdf"
	KindTextDocument FileKind = "text_document"
	KindImage        FileKind = "image"
	KindUnsupported  FileKind = "unsupported"
)

// PreviewLimit 预览最大字符数
const PreviewLimit = 300

// SupportedFormats 错误提示中列出的格式
const SupportedFormats = "PDF, TXT, MD, JSON, CSV, JPG, PNG, WEBP"

// KindForExtension 根据扩展名（不含点，小写）确定类别
func KindForExtension(ext string) FileKind {
	switch ext {
	case "pdf":
		return KindPDF
	case "txt", "md", "json", "csv":
		return KindTextDocument
	case "jpg", "jpeg", "png", "webp":
		return KindImage
	default:
		return KindUnsupported
	}
}

// FileTypeLabel 展示用文件类型标签
func FileTypeLabel(kind FileKind, ext string) string {
	switch kind {
	case KindPDF:
		return "PDF"
	case KindTextDocument:
		return strings.ToUpper(ext) + " Document"
	case KindImage:
		return "Image"
	default:
		return "unknown"
	}
}

// Upload 一次文件上传
type Upload struct {
	Filename string
	Content  io.Reader
}

// Extension 文件扩展名：最后一个点之后的部分，小写
// 没有点时返回整个文件名（小写）
func (u Upload) Extension() string {
	name := u.Filename
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// AnalysisRecord 文件分析结果（瞬态，不持久化）
type AnalysisRecord struct {
	Filename     string   `json:"filename"`
	Extension    string   `json:"extension"`
	Kind         FileKind `json:"kind"`
	FileType     string   `json:"file_type"`
	AnalysisText string   `json:"analysis"`
	Preview      string   `json:"preview"`
	OK           bool     `json:"ok"`
	Error        string   `json:"error,omitempty"`
}

// Preview 截取前 300 个字符，截断时追加 "..."
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewLimit {
		return text
	}
	return string(r[:PreviewLimit]) + "..."
}

// Truncate 按字符截断
func Truncate(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}
