package rag

import (
	"errors"
	"fmt"

	domainRAG "github.com/Danigallego24/RutaN/internal/domain/rag"
)

// ErrSessionIndexFull 会话的片段数已达上限
var ErrSessionIndexFull = errors.New("session index is full")

// UnsupportedFileTypeError 不支持的文件扩展名
type UnsupportedFileTypeError struct {
	Ext string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("Formato .%s no soportado. Usa: %s", e.Ext, domainRAG.SupportedFormats)
}

// AnalysisTooShortError 分析结果为空或过短
type AnalysisTooShortError struct {
	FileType string
}

func (e *AnalysisTooShortError) Error() string {
	return fmt.Sprintf("No se pudo analizar el contenido de %s", e.FileType)
}
