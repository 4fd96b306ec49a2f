package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainRAG "github.com/Danigallego24/RutaN/internal/domain/rag"
	"github.com/Danigallego24/RutaN/internal/infrastructure/config"
	"github.com/Danigallego24/RutaN/internal/infrastructure/extract"
	"github.com/Danigallego24/RutaN/internal/infrastructure/llm"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

const (
	// minAnalysisRunes 短于此长度的分析视为失败
	minAnalysisRunes = 10
	// documentContentLimit 送入文档提示词的最大字符数
	documentContentLimit = 4000
	visionTemperature    = 0.7
)

const visionPrompt = "Analiza esta imagen como experto en turismo. " +
	"Identifica: 1) Ubicación/lugar específico (si se puede), " +
	"2) Tipo de atracción, 3) Actividades posibles, " +
	"4) Condiciones visuales (clima, hora, multitud), " +
	"5) Recomendación para itinerario, 6) Detalles prácticos relevantes. " +
	"Sé conciso y práctico. Responde en español."

const documentSystemPrompt = "Eres un asistente experto en viajes. Analiza el documento y responde de forma concisa:\n\n"

// ErrFileTooLarge 上传超过大小限制
var ErrFileTooLarge = errors.New("file exceeds upload size limit")

// DocumentAnalysisError 所选模型和本地兜底都失败
type DocumentAnalysisError struct {
	Primary  error
	Fallback error
}

func (e *DocumentAnalysisError) Error() string {
	return fmt.Sprintf("Error analizando documento: %v | Fallback: %v", e.Primary, e.Fallback)
}

// Unwrap 两个原因都可以用 errors.As 取到
func (e *DocumentAnalysisError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// ModelProvider 分析器需要的模型能力
type ModelProvider interface {
	ResolveModel(hint string) (llm.ChatModel, error)
	Generate(ctx context.Context, req llm.GenerateRequest) (string, error)
	VisionModel() string
	LocalModel() string
}

// Analyzer 文件分析器
// 上传内容先落到临时文件，分析结束后总是删除
type Analyzer struct {
	models        ModelProvider
	uploadDir     string
	maxBytes      int64
	llmTimeout    time.Duration
	visionTimeout time.Duration
	logger        *slog.Logger
}

// NewAnalyzer 创建文件分析器
func NewAnalyzer(models ModelProvider, uploadCfg *config.UploadConfig, llmCfg *config.LLMConfig) *Analyzer {
	return &Analyzer{
		models:        models,
		uploadDir:     uploadCfg.Dir,
		maxBytes:      uploadCfg.MaxBytes,
		llmTimeout:    llmCfg.Timeout,
		visionTimeout: llmCfg.VisionTimeout,
		logger:        log.NewModuleLogger("rag", "analyzer"),
	}
}

// Analyze 分析上传文件
func (a *Analyzer) Analyze(ctx context.Context, upload domainRAG.Upload, sessionID, modelHint string) (*domainRAG.AnalysisRecord, error) {
	path, err := a.saveTemp(upload)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("Failed to remove temp upload", "path", path, "error", err)
		}
	}()

	ext := upload.Extension()
	kind := domainRAG.KindForExtension(ext)
	rec := &domainRAG.AnalysisRecord{
		Filename:  upload.Filename,
		Extension: ext,
		Kind:      kind,
		FileType:  domainRAG.FileTypeLabel(kind, ext),
	}

	a.logger.Info("Analyzing file",
		"session_id", sessionID,
		"filename", upload.Filename,
		"kind", kind,
	)

	var text string
	switch kind {
	case domainRAG.KindPDF:
		content, err := extract.PDF(path)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) == "" {
			return nil, &AnalysisTooShortError{FileType: rec.FileType}
		}
		text, err = a.analyzeDocument(ctx, content, rec.FileType, modelHint)
		if err != nil {
			return nil, err
		}

	case domainRAG.KindTextDocument:
		content, err := extract.Text(path)
		if err != nil {
			return nil, err
		}
		text, err = a.analyzeDocument(ctx, content, rec.FileType, modelHint)
		if err != nil {
			return nil, err
		}

	case domainRAG.KindImage:
		text, err = a.analyzeImage(ctx, path)
		if err != nil {
			return nil, err
		}

	default:
		return nil, &UnsupportedFileTypeError{Ext: ext}
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < minAnalysisRunes {
		return nil, &AnalysisTooShortError{FileType: rec.FileType}
	}

	rec.AnalysisText = text
	rec.Preview = domainRAG.Preview(text)
	rec.OK = true

	a.logger.Info("File analyzed",
		"session_id", sessionID,
		"filename", upload.Filename,
		"analysis_length", utf8.RuneCountInString(text),
	)
	return rec, nil
}

// saveTemp 写入 <upload dir>/<uuid>-<文件名>
func (a *Analyzer) saveTemp(upload domainRAG.Upload) (string, error) {
	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	base := filepath.Base(strings.ReplaceAll(upload.Filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	path := filepath.Join(a.uploadDir, uuid.New().String()+"-"+base)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	src := upload.Content
	if a.maxBytes > 0 {
		src = io.LimitReader(upload.Content, a.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	if copyErr == nil && a.maxBytes > 0 && n > a.maxBytes {
		copyErr = ErrFileTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(path)
		if errors.Is(copyErr, ErrFileTooLarge) {
			return "", copyErr
		}
		return "", fmt.Errorf("failed to save upload: %w", copyErr)
	}
	return path, nil
}

// analyzeImage 视觉模型分析
func (a *Analyzer) analyzeImage(ctx context.Context, path string) (string, error) {
	img, err := extract.PrepareImageFile(path)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, a.visionTimeout)
	defer cancel()

	out, err := a.models.Generate(ctx, llm.GenerateRequest{
		Model:       a.models.VisionModel(),
		Prompt:      visionPrompt,
		Images:      []string{img},
		Temperature: visionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("Error analizando imagen: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// analyzeDocument 先用所选模型，失败后用本地模型兜底
func (a *Analyzer) analyzeDocument(ctx context.Context, content, docType, modelHint string) (string, error) {
	prompt := documentPrompt(content, docType)

	var result string
	primaryErr := func() error {
		model, err := a.models.ResolveModel(modelHint)
		if err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, a.llmTimeout)
		defer cancel()

		out, err := model.Chat(callCtx, []llm.Message{
			{Role: llm.RoleSystem, Content: documentSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		})
		if err != nil {
			return err
		}
		result = out
		return nil
	}()
	if primaryErr == nil {
		return result, nil
	}

	a.logger.Warn("Document analysis failed, falling back to local model",
		"model_hint", modelHint,
		"error", primaryErr,
	)

	callCtx, cancel := context.WithTimeout(ctx, a.llmTimeout)
	defer cancel()

	out, err := a.models.Generate(callCtx, llm.GenerateRequest{
		Model:  a.models.LocalModel(),
		Prompt: prompt,
	})
	if err != nil {
		return "", &DocumentAnalysisError{Primary: primaryErr, Fallback: err}
	}
	return out, nil
}

// documentPrompt 文档分析提示词
func documentPrompt(content, docType string) string {
	return "Eres un experto en análisis de documentos de viaje. " +
		"Analiza el siguiente contenido de " + docType + " y extrae información útil para crear un itinerario.\n\n" +
		"CONTENIDO:\n" + domainRAG.Truncate(content, documentContentLimit) + "\n\n" +
		"Extrae: 1) Ubicaciones mencionadas, 2) Actividades sugeridas, " +
		"3) Restricciones horarias o de fechas, 4) Tipos de experiencia (cultura, gastronomía, naturaleza, etc.), " +
		"5) Información práctica relevante (precios, distancias, horarios, reservas, vuelos, hoteles). " +
		"Responde en español, de forma concisa y estructurada."
}
