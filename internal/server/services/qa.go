package services

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/accordai/gateway/internal/common"
	"github.com/accordai/gateway/internal/server/gemini"
)

// pdfTargetWidth is the pixel width every rasterized PDF page is rendered at
// before it is sent to the model. Wide renders keep small print in compliance
// documents legible.
const pdfTargetWidth = 7680

// imageMIMETypes maps accepted image file extensions to their MIME type.
var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// rasterizePDF renders every page of a PDF to a PNG at pdfTargetWidth pixels
// wide. Declared as a variable so tests can run without MuPDF assets.
var rasterizePDF = func(data []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("pdf open error: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		bound, err := doc.Bound(n)
		if err != nil {
			return nil, fmt.Errorf("pdf bounds error: %w", err)
		}
		width := bound.Dx()
		if width <= 0 {
			width = pdfTargetWidth
		}
		dpi := 72.0 * float64(pdfTargetWidth) / float64(width)

		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, fmt.Errorf("pdf render error: %w", err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("png encode error: %w", err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

// Generator is the model backend used to answer questions.
type Generator interface {
	GenerateContent(ctx context.Context, parts []gemini.Part) (string, error)
	Model() string
}

// QAResult is the outcome of one answered question.
type QAResult struct {
	Question   string
	Answer     string
	Model      string
	Filename   string
	Pages      int
	Resolution string
}

// QAService answers user questions by forwarding them, optionally with an
// attached image or PDF, to the model backend.
type QAService struct {
	generator Generator
}

func NewQAService(g Generator) *QAService {
	return &QAService{generator: g}
}

// AskText answers a plain text question.
func (s *QAService) AskText(ctx context.Context, question string) (*QAResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, common.ErrValidation
	}

	answer, err := s.generator.GenerateContent(ctx, []gemini.Part{gemini.TextPart(question)})
	if err != nil {
		return nil, err
	}

	return &QAResult{Question: question, Answer: answer, Model: s.generator.Model()}, nil
}

// AskImage answers a question about an uploaded image. The filename extension
// determines the MIME type; unsupported extensions are rejected.
func (s *QAService) AskImage(ctx context.Context, filename string, data []byte, question string) (*QAResult, error) {
	if strings.TrimSpace(question) == "" || len(data) == 0 {
		return nil, common.ErrValidation
	}

	mimeType, err := ImageMIMEType(filename)
	if err != nil {
		return nil, err
	}

	parts := []gemini.Part{
		gemini.TextPart(question),
		gemini.BlobPart(mimeType, data),
	}
	answer, err := s.generator.GenerateContent(ctx, parts)
	if err != nil {
		return nil, err
	}

	return &QAResult{
		Question: question,
		Answer:   answer,
		Model:    s.generator.Model(),
		Filename: filename,
	}, nil
}

// AskPDF answers a question about an uploaded PDF. Every page is rasterized
// to a wide PNG and all pages are sent alongside the question in one request,
// so answers can draw on the whole document.
func (s *QAService) AskPDF(ctx context.Context, filename string, data []byte, question string) (*QAResult, error) {
	if strings.TrimSpace(question) == "" || len(data) == 0 {
		return nil, common.ErrValidation
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, common.ErrValidation
	}

	pages, err := rasterizePDF(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrValidation, err)
	}
	if len(pages) == 0 {
		return nil, common.ErrValidation
	}

	parts := make([]gemini.Part, 0, len(pages)+1)
	parts = append(parts, gemini.TextPart(question))
	for _, page := range pages {
		parts = append(parts, gemini.BlobPart("image/png", page))
	}

	answer, err := s.generator.GenerateContent(ctx, parts)
	if err != nil {
		return nil, err
	}

	return &QAResult{
		Question:   question,
		Answer:     answer,
		Model:      s.generator.Model(),
		Filename:   filename,
		Pages:      len(pages),
		Resolution: fmt.Sprintf("%dpx wide", pdfTargetWidth),
	}, nil
}

// ImageMIMEType returns the MIME type for a supported image filename, or
// common.ErrValidation for anything else.
func ImageMIMEType(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := imageMIMETypes[ext]
	if !ok {
		return "", common.ErrValidation
	}
	return mimeType, nil
}
