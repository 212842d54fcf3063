package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"swipe/internal/domain"
	"swipe/internal/extract"
	"swipe/internal/port"
	"swipe/internal/validate"
)

// Document is one uploaded file in an extraction batch.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// docKind is the dispatch category resolved from filename and content type.
type docKind int

const (
	kindUnknown docKind = iota
	kindExcel
	kindCSV
	kindPDF
	kindImage
)

// DebugCounts summarizes the normalized dataset.
type DebugCounts struct {
	Products  int `json:"products"`
	Customers int `json:"customers"`
	Invoices  int `json:"invoices"`
}

// DebugTrail records what happened to each document during a batch, in
// upload order. It is returned only when the caller asks for it.
type DebugTrail struct {
	Steps  []string    `json:"steps"`
	Counts DebugCounts `json:"counts"`
}

// ExtractionConfig holds batch limits for the extraction service.
type ExtractionConfig struct {
	MaxFileSizeMB int64
	MaxBatchSize  int
	Concurrency   int
}

// ExtractionService runs the full pipeline: decode each document,
// extract a fragment from it, then merge, clean and normalize the
// fragments into one dataset.
type ExtractionService struct {
	excel     port.SpreadsheetDecoder
	csv       port.SpreadsheetDecoder
	pdf       port.TextDecoder
	extractor port.FragmentExtractor
	rules     *validate.Registry
	cfg       ExtractionConfig
}

// NewExtractionService creates an ExtractionService.
func NewExtractionService(excel, csv port.SpreadsheetDecoder, pdf port.TextDecoder, extractor port.FragmentExtractor, cfg ExtractionConfig) *ExtractionService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &ExtractionService{
		excel:     excel,
		csv:       csv,
		pdf:       pdf,
		extractor: extractor,
		rules:     validate.DefaultRegistry(),
		cfg:       cfg,
	}
}

// ValidateBatch checks batch-level limits before any work is dispatched.
func (s *ExtractionService) ValidateBatch(docs []Document) error {
	if len(docs) == 0 {
		return domain.ErrEmptyBatch
	}
	if s.cfg.MaxBatchSize > 0 && len(docs) > s.cfg.MaxBatchSize {
		return fmt.Errorf("%w: %d files (max %d)", domain.ErrBatchTooLarge, len(docs), s.cfg.MaxBatchSize)
	}
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	for _, doc := range docs {
		if maxBytes > 0 && int64(len(doc.Data)) > maxBytes {
			return fmt.Errorf("%w: %s (%d bytes, max %d MB)", domain.ErrFileTooLarge, doc.Filename, len(doc.Data), s.cfg.MaxFileSizeMB)
		}
		if classify(doc) == kindUnknown {
			return fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFileType, doc.Filename, doc.ContentType)
		}
	}
	return nil
}

// docResult holds one document's fragment plus its debug steps, indexed
// by upload position so merge order stays deterministic.
type docResult struct {
	frag  domain.Fragment
	steps []string
}

// ExtractBatch processes all documents concurrently and returns one
// normalized dataset plus the consistency issues found in it. A
// document that fails contributes an empty fragment; per-document
// errors never fail the batch.
func (s *ExtractionService) ExtractBatch(ctx context.Context, docs []Document, debug bool) (domain.Dataset, []validate.Issue, *DebugTrail, error) {
	if err := s.ValidateBatch(docs); err != nil {
		return domain.Dataset{}, nil, nil, err
	}

	results := make([]docResult, len(docs))
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup

	for i := range docs {
		doc := docs[i]
		idx := i

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release
			results[idx] = s.extractOne(ctx, doc)
		}()
	}
	wg.Wait()

	frags := make([]domain.Fragment, len(results))
	for i, r := range results {
		frags[i] = r.frag
	}

	merged := extract.Merge(frags...)
	cleaned := extract.Clean(merged)
	dataset := extract.Normalize(cleaned)
	issues := s.rules.Run(&dataset)

	var trail *DebugTrail
	if debug {
		trail = &DebugTrail{
			Counts: DebugCounts{
				Products:  len(dataset.Products),
				Customers: len(dataset.Customers),
				Invoices:  len(dataset.Invoices),
			},
		}
		for _, r := range results {
			trail.Steps = append(trail.Steps, r.steps...)
		}
	}

	return dataset, issues, trail, nil
}

// extractOne runs the dispatch pipeline for a single document. It never
// returns an error: failures degrade to an empty fragment and are
// recorded in the debug steps only.
func (s *ExtractionService) extractOne(ctx context.Context, doc Document) docResult {
	var res docResult
	step := func(format string, args ...any) {
		res.steps = append(res.steps, doc.Filename+": "+fmt.Sprintf(format, args...))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("extraction: panic on %s: %v", doc.Filename, r)
			step("panic recovered: %v", r)
			res.frag = domain.Fragment{}
		}
	}()

	switch classify(doc) {
	case kindExcel:
		res.frag = s.extractSpreadsheet(ctx, doc, s.excel, step)
	case kindCSV:
		res.frag = s.extractSpreadsheet(ctx, doc, s.csv, step)
	case kindPDF:
		res.frag = s.extractPDF(ctx, doc, step)
	case kindImage:
		res.frag = s.extractRemote(ctx, port.ExtractInput{
			FileBytes:   doc.Data,
			ContentType: doc.ContentType,
			Filename:    doc.Filename,
		}, step)
	default:
		step("unsupported file type %s, skipped", doc.ContentType)
	}
	return res
}

// extractSpreadsheet decodes sheets locally and maps rows by column
// role. An empty local result escalates the rendered CSV text to the
// remote extractor.
func (s *ExtractionService) extractSpreadsheet(ctx context.Context, doc Document, decoder port.SpreadsheetDecoder, step func(string, ...any)) domain.Fragment {
	sheets, err := decoder.Decode(doc.Data)
	if err != nil {
		step("decode failed: %v", err)
		return domain.Fragment{}
	}

	frags := make([]domain.Fragment, 0, len(sheets))
	for _, sheet := range sheets {
		frags = append(frags, extract.FromSheet(sheet))
	}
	frag := extract.Merge(frags...)
	step("decoded %d sheet(s), mapped %d invoice row(s)", len(sheets), len(frag.Invoices))

	if !frag.Empty() {
		return frag
	}

	var rendered strings.Builder
	for _, sheet := range sheets {
		rendered.WriteString(decoder.RenderCSV(sheet))
		rendered.WriteString("\n")
	}
	if strings.TrimSpace(rendered.String()) == "" {
		step("no mappable columns and no text, skipped")
		return domain.Fragment{}
	}
	step("no mappable columns, escalating rendered csv")
	return s.extractRemote(ctx, port.ExtractInput{
		Filename: doc.Filename,
		Text:     rendered.String(),
	}, step)
}

// extractPDF tries local text extraction and heuristic parsing first,
// escalating the raw bytes to the remote extractor when the text is
// unreadable or the parsed fragment fails the quality gate.
func (s *ExtractionService) extractPDF(ctx context.Context, doc Document, step func(string, ...any)) domain.Fragment {
	remote := port.ExtractInput{
		FileBytes:   doc.Data,
		ContentType: "application/pdf",
		Filename:    doc.Filename,
	}

	pages, text, err := s.pdf.DecodeText(doc.Data)
	if err != nil {
		step("pdf text extraction failed (%v), escalating", err)
		return s.extractRemote(ctx, remote, step)
	}
	if strings.TrimSpace(text) == "" {
		step("pdf has no extractable text (%d page(s)), escalating", pages)
		return s.extractRemote(ctx, remote, step)
	}

	frag := extract.ParseText(text)
	if extract.NeedsEscalation(frag) {
		step("heuristic parse too weak (%d item(s)), escalating", frag.ItemCount())
		return s.extractRemote(ctx, remote, step)
	}
	step("heuristic parse: %d invoice(s), %d item(s)", len(frag.Invoices), frag.ItemCount())
	return frag
}

// extractRemote calls the remote extractor and degrades any failure to
// an empty fragment.
func (s *ExtractionService) extractRemote(ctx context.Context, input port.ExtractInput, step func(string, ...any)) domain.Fragment {
	frag, err := s.extractor.Extract(ctx, input)
	if err != nil {
		log.Printf("extraction: remote extractor failed on %s: %v", input.Filename, err)
		step("remote extraction failed: %v", err)
		return domain.Fragment{}
	}
	step("remote extraction: %d invoice(s), %d product(s)", len(frag.Invoices), len(frag.Products))
	return frag
}

func classify(doc Document) docKind {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	switch ext {
	case ".xlsx", ".xls":
		return kindExcel
	case ".csv":
		return kindCSV
	case ".pdf":
		return kindPDF
	case ".png", ".jpg", ".jpeg", ".webp":
		return kindImage
	}

	switch strings.ToLower(strings.TrimSpace(strings.Split(doc.ContentType, ";")[0])) {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.ms-excel":
		return kindExcel
	case "text/csv":
		return kindCSV
	case "application/pdf":
		return kindPDF
	case "image/png", "image/jpeg", "image/jpg", "image/webp":
		return kindImage
	}
	return kindUnknown
}
