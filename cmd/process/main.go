package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"escrituras/internal/common"
	"escrituras/internal/llm/openai"
	"escrituras/internal/ocr"
	"escrituras/internal/pipeline"
	"escrituras/internal/repository"
)

// process runs the full pipeline on one PDF and prints the extracted record.
// When a folder number is given, the record is also saved.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage", "cmd", "process <pdf-path> [numero-carpeta]")
		os.Exit(2)
	}
	pdfPath := os.Args[1]

	carpeta := 0
	if len(os.Args) >= 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			logger.Error("invalid folder number (must be a positive integer)", "arg", os.Args[2])
			os.Exit(2)
		}
		carpeta = n
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	textExtractor := ocr.NewExtractor(ocr.Config{
		Language: cfg.OCR.Language,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, logger)
	deedExtractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	p := pipeline.NewProcessor(logger, textExtractor, deedExtractor)

	start := time.Now()
	rec, err := p.Process(ctx, pdfPath)
	if err != nil {
		logger.Error("processing failed", "path", pdfPath, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Error("encode record", "error", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(append(out, '\n'))

	if carpeta > 0 {
		store, err := repository.OpenFromConfig(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("open store", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := store.Save(ctx, carpeta, rec); err != nil {
			logger.Error("save failed", "numero_carpeta", carpeta, "error", err)
			os.Exit(1)
		}
		logger.Info("record saved", "numero_carpeta", carpeta, "duration_ms", time.Since(start).Milliseconds())
	}
}
