package main

import (
	"fmt"
	"log"

	"swipe/internal/config"
	"swipe/internal/decode"
	"swipe/internal/gemini"
	"swipe/internal/handler"
	"swipe/internal/router"
	"swipe/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize decoders and the remote extractor
	excelDecoder := decode.NewExcelDecoder()
	csvDecoder := decode.NewCSVDecoder()
	pdfDecoder := decode.NewPDFDecoder()
	geminiClient := gemini.NewClient(&cfg.Gemini)

	// Initialize services
	extractionSvc := service.NewExtractionService(excelDecoder, csvDecoder, pdfDecoder, geminiClient, service.ExtractionConfig{
		MaxFileSizeMB: cfg.Extract.MaxFileSizeMB,
		MaxBatchSize:  cfg.Extract.MaxBatchSize,
		Concurrency:   cfg.Extract.Concurrency,
	})

	// Initialize handlers
	extractH := handler.NewExtractHandler(extractionSvc)
	modelsH := handler.NewModelsHandler(geminiClient, geminiClient)
	healthH := handler.NewHealthHandler(geminiClient)

	// Setup router
	r := router.Setup(cfg, extractH, modelsH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
