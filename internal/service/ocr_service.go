package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"receipt-vault/pkg/config"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// TextExtractor is the optional vision-model fallback used when the
// provider is set to "gigachat".
type TextExtractor interface {
	ExtractTextFromImage(ctx context.Context, imagePath string) (string, error)
}

// OCRService obtains raw text for a receipt file. OCR is strictly
// best-effort: a missing binary, non-zero exit, empty output or timeout all
// degrade to "no text available" rather than failing the ingestion.
type OCRService struct {
	cfg       *config.OCRConfig
	extractor TextExtractor
	logger    *zap.Logger
}

func NewOCRService(cfg *config.OCRConfig, extractor TextExtractor, logger *zap.Logger) *OCRService {
	return &OCRService{
		cfg:       cfg,
		extractor: extractor,
		logger:    logger,
	}
}

// ExtractText returns (text, engine) for the file, or ("", "") when no
// text could be obtained. PDFs are read directly via go-fitz; images go
// through the configured OCR provider.
func (s *OCRService) ExtractText(ctx context.Context, filePath string) (string, string) {
	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		text, err := s.extractTextFromPDF(filePath)
		if err != nil {
			s.logger.Warn("PDF text extraction failed", zap.String("file", filePath), zap.Error(err))
			return "", ""
		}
		return text, "pdf"
	}

	switch s.cfg.Provider {
	case "gigachat":
		if s.extractor == nil {
			s.logger.Warn("GigaChat OCR provider selected but not configured")
			return "", ""
		}
		text, err := s.extractor.ExtractTextFromImage(ctx, filePath)
		if err != nil {
			s.logger.Warn("GigaChat OCR failed", zap.String("file", filePath), zap.Error(err))
			return "", ""
		}
		if text = strings.TrimSpace(text); text == "" {
			return "", ""
		}
		return text, "gigachat"
	default:
		text := s.runTesseract(ctx, filePath)
		if text == "" {
			return "", ""
		}
		return text, "tesseract"
	}
}

// runTesseract invokes the external OCR binary with a bounded timeout.
func (s *OCRService) runTesseract(ctx context.Context, imagePath string) string {
	binary, err := exec.LookPath(s.cfg.Binary)
	if err != nil {
		s.logger.Debug("OCR binary not found", zap.String("binary", s.cfg.Binary))
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, imagePath, "stdout", "-l", s.cfg.Langs)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("OCR timed out", zap.String("file", imagePath), zap.Duration("timeout", s.cfg.Timeout))
		} else {
			s.logger.Debug("OCR failed", zap.String("file", imagePath), zap.Error(err))
		}
		return ""
	}

	return strings.TrimSpace(stdout.String())
}

// extractTextFromPDF pulls embedded text out of a PDF, page by page.
func (s *OCRService) extractTextFromPDF(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", pdfPath),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	return strings.TrimSpace(textBuilder.String()), nil
}
