package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/report"
)

const (
	// previewChars is the length of the per-page text preview of debug-pdf.
	previewChars = 1000

	msgNoTransactions = "No valid transactions found in uploaded files"
)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Service *analysis.Service
	Config  *config.Config
	Logger  zerolog.Logger
	Version string
}

// PagePreview is the start of one page's extracted text.
type PagePreview struct {
	PageNumber  int    `json:"pageNumber"`
	CharCount   int    `json:"charCount"`
	TextPreview string `json:"textPreview"`
}

// DebugResponse is the JSON response from the /api/debug-pdf endpoint.
type DebugResponse struct {
	FileName         string             `json:"fileName"`
	PageCount        int                `json:"pageCount"`
	Pages            []PagePreview      `json:"pages"`
	TransactionCount int                `json:"transactionCount"`
	SkippedLines     int                `json:"skippedLines"`
	DebugLines       []models.DebugLine `json:"debugLines"`
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.HandleRoot)
	app.Get("/health", h.HandleLiveness)

	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Post("/analyze", h.HandleAnalyze)
	api.Post("/debug-pdf", h.HandleDebugPDF)
}

func (h *Handler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Bank Statement Analyzer API",
		"status":  "running",
	})
}

// HandleLiveness answers the bare liveness probe used by older clients.
func (h *Handler) HandleLiveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.Version,
		"engine":  "fiber",
	})
}

// HandleAnalyze analyzes the PDFs uploaded in the multipart field "files".
func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	log := logger.FromContext(c.UserContext())

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No files provided")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files provided")
	}
	if len(files) > h.Config.MaxFiles {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Maximum %d files allowed per request", h.Config.MaxFiles))
	}

	var (
		docs    []analysis.Document
		skipped []models.SkippedDocument
	)
	for _, fh := range files {
		if !isPDF(fh.Filename) {
			log.Warn().Str("file", fh.Filename).Msg("Skipping non-PDF file")
			skipped = append(skipped, models.SkippedDocument{FileName: fh.Filename, Reason: "not a PDF file"})
			continue
		}
		if fh.Size > h.Config.MaxFileSize() {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("File %s exceeds %dMB limit", fh.Filename, h.Config.MaxFileSizeMB))
		}
		data, err := readUpload(fh)
		if err != nil {
			log.Warn().Err(err).Str("file", fh.Filename).Msg("Skipping unreadable upload")
			skipped = append(skipped, models.SkippedDocument{FileName: fh.Filename, Reason: err.Error()})
			continue
		}
		docs = append(docs, analysis.Document{FileName: fh.Filename, Data: data})
	}

	batch, err := h.Service.AnalyzeDocuments(c.UserContext(), docs)
	if err != nil {
		return fmt.Errorf("analyze batch: %w", err)
	}
	batch.Skipped = append(batch.Skipped, skipped...)

	if len(batch.Results) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, msgNoTransactions)
	}

	log.Info().
		Str("batch_id", batch.ID).
		Int("files_processed", len(batch.Results)).
		Msg("Successfully processed files")
	return c.JSON(report.NewBatchReport(batch))
}

// HandleDebugPDF shows what the extractor and parser see in one upload.
func (h *Handler) HandleDebugPDF(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if fh.Size > h.Config.MaxFileSize() {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("File %s exceeds %dMB limit", fh.Filename, h.Config.MaxFileSizeMB))
	}
	data, err := readUpload(fh)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Failed to read %s: %v", fh.Filename, err))
	}

	pages, err := h.Service.Extractor.ExtractPages(c.UserContext(), data)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}
	info, err := h.Service.Parser.Parse(pages)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	resp := DebugResponse{
		FileName:         fh.Filename,
		PageCount:        len(pages),
		Pages:            make([]PagePreview, 0, len(pages)),
		TransactionCount: len(info.Transactions),
		SkippedLines:     info.SkippedLines,
		DebugLines:       info.DebugLines,
	}
	if resp.DebugLines == nil {
		resp.DebugLines = []models.DebugLine{}
	}
	for i, page := range pages {
		resp.Pages = append(resp.Pages, PagePreview{
			PageNumber:  i + 1,
			CharCount:   len([]rune(page)),
			TextPreview: preview(page, previewChars),
		})
	}
	return c.JSON(resp)
}

func (h *Handler) bodyLimit() int {
	// Room for every file at its limit plus the multipart framing.
	return h.Config.MaxFiles*int(h.Config.MaxFileSize()) + 1<<20
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}
	return data, nil
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
