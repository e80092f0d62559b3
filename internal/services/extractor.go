package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/models"
)

const (
	PDFModePDFToText = "pdftotext"
	PDFModeNative    = "native"

	PlaceholderPDFFailed  = "Failed to extract text from PDF."
	PlaceholderTextFailed = "Failed to read text file."

	DefaultExtractTimeout = 60 * time.Second
)

// TextExtractor turns a stored resume into plain text. It never fails: when
// text cannot be obtained it returns a placeholder describing why, and the
// analysis still runs on that.
type TextExtractor interface {
	Extract(ctx context.Context, filePath, fileType string) string
}

type textExtractor struct {
	pdfMode       string
	pdfToTextPath string
	docxEnabled   bool
	timeout       time.Duration
}

func NewTextExtractor(cfg config.ExtractionConfig) TextExtractor {
	mode := cfg.PDFMode
	if mode == "" {
		mode = PDFModePDFToText
	}
	bin := cfg.PDFToTextPath
	if bin == "" {
		bin = "pdftotext"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}

	return &textExtractor{
		pdfMode:       mode,
		pdfToTextPath: bin,
		docxEnabled:   cfg.DOCXEnabled,
		timeout:       timeout,
	}
}

func NotImplementedPlaceholder(fileType string) string {
	return fmt.Sprintf("Text extraction is not implemented for %s files.", strings.ToUpper(fileType))
}

func UnavailablePlaceholder(reason error) string {
	return fmt.Sprintf("Could not execute pdftotext: %v", reason)
}

// Extract implements TextExtractor.
func (e *textExtractor) Extract(ctx context.Context, filePath, fileType string) string {
	switch fileType {
	case models.FileTypeTXT:
		data, err := os.ReadFile(filePath)
		if err != nil {
			log.Printf("⚠️  Failed to read text resume %s: %v", filePath, err)
			return PlaceholderTextFailed
		}
		return sanitizeText(string(data))

	case models.FileTypePDF:
		if e.pdfMode == PDFModeNative {
			return e.extractPDFNative(filePath)
		}
		return e.extractPDFWithTool(ctx, filePath)

	case models.FileTypeDOCX:
		if !e.docxEnabled {
			return NotImplementedPlaceholder(fileType)
		}
		text, err := extractDOCX(filePath)
		if err != nil {
			log.Printf("⚠️  DOCX extraction failed for %s: %v", filePath, err)
			return NotImplementedPlaceholder(fileType)
		}
		return text

	default:
		return NotImplementedPlaceholder(fileType)
	}
}

func (e *textExtractor) extractPDFWithTool(ctx context.Context, filePath string) string {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.pdfToTextPath, filePath, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return sanitizeText(stdout.String())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Printf("⚠️  pdftotext timed out after %s on %s", e.timeout, filePath)
		return PlaceholderPDFFailed
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		log.Printf("⚠️  pdftotext exited with status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		return PlaceholderPDFFailed
	}

	log.Printf("⚠️  Could not run pdftotext: %v", err)
	return UnavailablePlaceholder(err)
}

func (e *textExtractor) extractPDFNative(filePath string) string {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		log.Printf("⚠️  Failed to open PDF %s: %v", filePath, err)
		return PlaceholderPDFFailed
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(sanitizeText(textBuilder.String()))
	if text == "" {
		return PlaceholderPDFFailed
	}

	return text
}

func extractDOCX(filePath string) (string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	text := CleanText(sanitizeText(stripXMLTags(doc.Editable().GetContent())))
	if text == "" {
		return "", errors.New("no text content found in docx")
	}
	return text, nil
}

// stripXMLTags drops the WordprocessingML markup GetContent returns, turning
// paragraph ends into newlines and decoding entities in the remaining text.
func stripXMLTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")

	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}

// sanitizeText makes extracted text safe to store in a text column: invalid
// UTF-8 becomes U+FFFD and NUL bytes are dropped.
func sanitizeText(s string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(s, "\uFFFD"), "\x00", "")
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
